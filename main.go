package main

import (
	"context"
	"log"
	"time"

	"lms-quiz-service/internal/cache"
	"lms-quiz-service/internal/config"
	"lms-quiz-service/internal/db"
	"lms-quiz-service/internal/event"
	"lms-quiz-service/internal/handlers"
	"lms-quiz-service/internal/repository"
	"lms-quiz-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	if cfg.MongoDB.URI == "" {
		log.Fatal("MONGO_URI is required")
	}
	db.InitMongo(cfg.MongoDB.URI)
	defer db.CloseMongo()

	database := db.Client.Database(cfg.MongoDB.Database)

	// Optional redis cache for the redacted take view
	var quizCache *cache.QuizCache
	if cfg.Redis.Address != "" {
		var err error
		quizCache, err = cache.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer quizCache.Close()
	} else {
		log.Println("Redis not configured, take views will not be cached")
	}

	// Optional RabbitMQ event publisher
	var publisher *event.EventPublisher
	if cfg.RabbitMQ.URI != "" && cfg.RabbitMQ.Exchange != "" {
		var err error
		publisher, err = event.NewEventPublisher(cfg.RabbitMQ.URI, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	} else {
		log.Println("RabbitMQ not configured, quiz events will not be published")
	}

	// Repositories
	quizRepo := repository.NewQuizRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	userRepo := repository.NewUserRepository(database)

	// The unique (student, quiz, attempt_number) index backs attempt
	// sequencing under concurrent submissions.
	indexCtx, indexCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := attemptRepo.EnsureIndexes(indexCtx); err != nil {
		indexCancel()
		log.Fatalf("Failed to create attempt indexes: %v", err)
	}
	indexCancel()

	// Services and handlers
	attemptService := service.NewAttemptService(quizRepo, attemptRepo, userRepo, quizCache)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	quizService := service.NewQuizService(quizRepo, quizCache)
	quizHandler := handlers.NewQuizHandler(quizService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Student routes
	quizzes := r.Group("/quizzes")
	quizzes.Use(handlers.RequireIdentity())
	{
		quizzes.GET("/my-attempts", attemptHandler.GetMyAttempts)
		quizzes.GET("/:quizId/details", attemptHandler.GetQuizDetails)
		quizzes.GET("/:quizId/take", attemptHandler.TakeQuiz)
		quizzes.POST("/:quizId/submit", func(c *gin.Context) {
			attemptHandler.SubmitQuiz(c)
			if publisher != nil {
				publisher.Publish("quiz.attempt.submitted", gin.H{
					"quiz_id":   c.Param("quizId"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		quizzes.GET("/:quizId/attempts/:attemptId/results", attemptHandler.GetAttemptResults)
	}

	// Admin routes
	admin := r.Group("/admin/quizzes")
	admin.Use(handlers.RequireIdentity(), handlers.RequireAdmin())
	{
		admin.POST("", func(c *gin.Context) {
			quizHandler.CreateQuiz(c)
			if publisher != nil {
				publisher.Publish("quiz.created", gin.H{
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		admin.GET("", quizHandler.ListQuizzes)
		admin.GET("/:id", quizHandler.GetQuiz)
		admin.PUT("/:id", func(c *gin.Context) {
			quizHandler.UpdateQuiz(c)
			if publisher != nil {
				publisher.Publish("quiz.updated", gin.H{
					"quiz_id":   c.Param("id"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
		admin.DELETE("/:id", func(c *gin.Context) {
			quizHandler.DeleteQuiz(c)
			if publisher != nil {
				publisher.Publish("quiz.deleted", gin.H{
					"quiz_id":   c.Param("id"),
					"user_id":   c.GetHeader("X-User-ID"),
					"timestamp": time.Now(),
				})
			}
		})
	}

	r.Run(":" + cfg.Server.Port)
}
