package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-manager-api/internal/config"
	"github.com/iliyamo/task-manager-api/internal/database"
	"github.com/iliyamo/task-manager-api/internal/handler"
	"github.com/iliyamo/task-manager-api/internal/mailer"
	appmw "github.com/iliyamo/task-manager-api/internal/middleware"
	"github.com/iliyamo/task-manager-api/internal/queue"
	"github.com/iliyamo/task-manager-api/internal/repository"
	"github.com/iliyamo/task-manager-api/internal/router"
	"github.com/iliyamo/task-manager-api/internal/service"
	"github.com/iliyamo/task-manager-api/internal/validation"
)

func main() {
	// Load a local .env when present; real deployments set the environment.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Repositories and services.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	taskRepo := repository.NewTaskRepo(db)

	v := validation.New()
	publisher := queue.NewPublisher(cfg.AmqpURL)

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessTTLMin, userRepo, tokenRepo)
	var events service.EventPublisher
	if publisher != nil {
		events = publisher
	}
	accounts := service.NewAccountService(userRepo, taskRepo, events, v, cfg.BcryptCost)
	tasks := service.NewTaskService(taskRepo)

	// Background mail consumer; lives for the whole process.
	send := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	go queue.StartAccountConsumer(cfg.AmqpURL, send)

	e := echo.New()
	e.Validator = &validation.EchoValidator{V: v}

	// Distributed rate limiting when Redis is reachable; no-op otherwise.
	rdb := config.NewRedisClient()
	e.Use(appmw.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.Register(e,
		handler.NewUserHandler(accounts, tokens),
		handler.NewAvatarHandler(accounts),
		handler.NewTaskHandler(tasks),
		tokens,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
