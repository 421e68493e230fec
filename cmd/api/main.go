package main

import (
	"log"
	"os"
	"time"

	"styleforecastapi/controllers"
	"styleforecastapi/dbhelper"
	"styleforecastapi/services"
	"styleforecastapi/tasks"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET environment variable is not set!")
	}
	err := sentry.Init(sentry.ClientOptions{
		// Either set your DSN here or set the SENTRY_DSN environment variable.
		Dsn:         os.Getenv("SENTRY_DSN"),
		Environment: services.GetEnv("ENV", "local"),
		Release:     "styleforecastapi@1.0.0",
		Debug:       false,
		// Set TracesSampleRate to 1.0 to capture 100%
		// of transactions for performance monitoring.
		// We recommend adjusting this value in production,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Recover()
	defer sentry.Flush(2 * time.Second)

	db := dbhelper.SetupDB()

	asynqClient, err := tasks.NewClient()
	if err != nil {
		log.Fatalf("Failed to initialize task queue client: %v", err)
	}
	asynqInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: services.GetEnv("ASYNC_BROKER_ADDRESS", "localhost:6379")})

	weatherService, err := services.NewOpenWeatherService()
	if err != nil {
		log.Fatalf("Failed to initialize weather service: %v", err)
	}
	groqClient := services.NewGroqClientFromEnv()

	e := controllers.SetupServer(db, weatherService, groqClient, asynqClient, asynqInspector)
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(3)))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	e.Logger.Fatal(e.Start(":8083"))
}
