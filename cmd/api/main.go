package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Recepcion-api/internal/application/reception"
	"github.com/jhoicas/Recepcion-api/internal/infrastructure/events"
	"github.com/jhoicas/Recepcion-api/internal/infrastructure/locking"
	infrapdf "github.com/jhoicas/Recepcion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Recepcion-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Recepcion-api/internal/interfaces/http"
	"github.com/jhoicas/Recepcion-api/pkg/config"
	"github.com/jhoicas/Recepcion-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Bloqueo por recepción: Redis si hay varias instancias, si no en memoria.
	var locker reception.Locker
	if cfg.Redis.Enabled() {
		rdb, err := locking.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = locking.NewRedisLocker(rdb, cfg.Reception.LockTTL, log)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("bloqueo distribuido con Redis")
	} else {
		locker = locking.NewKeyedMutex()
		log.Warn().Msg("REDIS_ADDR vacío: bloqueo en memoria, usar una sola instancia")
	}

	// Eventos del ciclo de vida: Kafka si hay brokers, si no solo log.
	var publisher reception.EventPublisher
	if cfg.Kafka.Enabled() {
		kp, err := events.NewKafkaPublisher(cfg.Kafka, log)
		if err != nil {
			log.Fatal().Err(err).Msg("productor Kafka")
		}
		defer kp.Close()
		publisher = kp
	} else {
		publisher = events.NewLogPublisher(log)
	}

	receptionUC := reception.NewUseCase(reception.Deps{
		TxRunner:         postgres.NewTxRunner(pool),
		ReceptionRepo:    postgres.NewReceptionRepository(pool),
		CatalogRepo:      postgres.NewCatalogRepository(pool),
		Locker:           locker,
		TextSource:       infrapdf.NewTextSource(),
		Events:           publisher,
		Reports:          infrapdf.NewMarotoReportGenerator(),
		Logger:           log,
		OperationTimeout: cfg.Reception.OperationTimeout,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    20 * 1024 * 1024,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: cfg.HTTP.SwaggerFile,
		Path:     "docs",
		Title:    "Recepción de Mercancía API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Receptions: receptionUC,
		UploadDir:  cfg.Reception.UploadDir,
		JWTSecret:  cfg.JWT.Secret,
		Logger:     log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
