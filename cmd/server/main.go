package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/prakkhar03/skillbridge/internal/config"
	"github.com/prakkhar03/skillbridge/internal/domain/fiber/handler"
	applog "github.com/prakkhar03/skillbridge/internal/logger"
	"github.com/prakkhar03/skillbridge/internal/middleware"
	"github.com/prakkhar03/skillbridge/internal/model"
	"github.com/prakkhar03/skillbridge/internal/repository"
	"github.com/prakkhar03/skillbridge/internal/service"
	"github.com/prakkhar03/skillbridge/internal/usecase"
	"github.com/prakkhar03/skillbridge/internal/util"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded")
	}

	appConfig := config.LoadAppConfig()
	applog.Setup(appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	authConfig := config.LoadAuthConfig()
	if authConfig.JWTSecret == "" {
		fatal("AUTH_JWT_SECRET not set")
	}

	db := ConnectDB()

	pipeline := config.LoadPipelineConfig()
	backend, err := service.NewBackend(ctx, pipeline)
	if err != nil {
		fatal("could not create analysis backend", slog.Any("error", err))
	}
	slog.Info("analysis backend ready", slog.String("backend", backend.Name()))

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)
	verifications := repository.NewVerificationRepository(db)
	skillTests := repository.NewSkillTestRepository(db)
	testResults := repository.NewTestResultRepository(db)

	analysis := service.NewAnalysisService(backend)
	synth := usecase.NewRecommendationSynthesizer(analysis)
	uc := usecase.NewVerificationUsecase(usecase.VerificationUsecaseDeps{
		Users:         users,
		Profiles:      profiles,
		Verifications: verifications,
		Analysis:      analysis,
		Github:        service.NewGithubService(*config.LoadGithubConfig()),
		Synth:         synth,
		Generator:     usecase.NewAssessmentGenerator(analysis, skillTests, pipeline.AssessmentQuestions),
		Grader:        usecase.NewGrader(skillTests, testResults, verifications, profiles, synth, pipeline.PassThreshold),
		Guard:         newInflightGuard(ctx),
	})

	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		ErrorHandler: errorHandler,
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handler.NewVerificationHandler(uc).RegisterRoutes(app, middleware.Auth(authConfig.JWTSecret, users))

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				slog.Debug("runtime stats", slog.Int("goroutines", runtime.NumGoroutine()))
			}
		}
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			slog.Error("shutdown failed", slog.Any("error", err))
		}
	}()

	slog.Info("server running", slog.String("port", appConfig.Port))
	if err := app.Listen(appConfig.Port); err != nil {
		fatal("server stopped", slog.Any("error", err))
	}
}

func errorHandler(c *fiber.Ctx, err error) error {
	var e *fiber.Error
	if errors.As(err, &e) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{Code: e.Code, Message: e.Message})
	}
	return util.HandleError(c, "Internal Server Error", err)
}

// newInflightGuard uses Redis when configured so duplicate requests are
// caught across instances, and falls back to an in-process guard otherwise.
func newInflightGuard(ctx context.Context) service.InflightGuard {
	redisConfig := config.LoadRedisConfig()
	if redisConfig.URL == "" {
		slog.Warn("REDIS_URL not set, using in-process inflight guard")
		return service.NewLocalInflightGuard()
	}
	opts, err := redis.ParseURL(redisConfig.URL)
	if err != nil {
		fatal("invalid REDIS_URL", slog.Any("error", err))
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		fatal("could not connect to redis", slog.Any("error", err))
	}
	return service.NewRedisInflightGuard(client, redisConfig.InflightTTL)
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		fatal("could not connect to database", slog.Any("error", err))
	}
	pgDB, err := db.DB()
	if err != nil {
		fatal("could not get database instance", slog.Any("error", err))
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		fatal("could not enable uuid-ossp", slog.Any("error", err))
	}
	err = db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Verification{},
		&model.SkillTest{},
		&model.TestResult{},
	)
	if err != nil {
		fatal("migration failed", slog.Any("error", err))
	}
	return db
}

func fatal(msg string, attrs ...any) {
	slog.Error(msg, attrs...)
	os.Exit(1)
}
