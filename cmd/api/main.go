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

	_ "github.com/jhoicas/retail-ledger-api/docs"
	"github.com/jhoicas/retail-ledger-api/internal/application/auth"
	"github.com/jhoicas/retail-ledger-api/internal/application/catalog"
	"github.com/jhoicas/retail-ledger-api/internal/application/checkout"
	"github.com/jhoicas/retail-ledger-api/internal/application/ledger"
	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/application/pricing"
	"github.com/jhoicas/retail-ledger-api/internal/application/purchasing"
	"github.com/jhoicas/retail-ledger-api/internal/application/returns"
	"github.com/jhoicas/retail-ledger-api/internal/application/shift"
	"github.com/jhoicas/retail-ledger-api/internal/application/transfer"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/cache"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/events"
	infrapdf "github.com/jhoicas/retail-ledger-api/internal/infrastructure/pdf"
	"github.com/jhoicas/retail-ledger-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/retail-ledger-api/internal/interfaces/http"
	"github.com/jhoicas/retail-ledger-api/pkg/config"
	"github.com/jhoicas/retail-ledger-api/pkg/logger"
	"github.com/jhoicas/retail-ledger-api/pkg/tracing"
)

const serviceVersion = "1.0.0"

// @title			Retail Ledger API
// @version		1.0
// @description	Movimientos de inventario y reservas multi-tienda: caja, devoluciones, compras y traslados.
// @BasePath		/
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTracing, err := tracing.Setup(ctx, tracing.Config{
		Endpoint:       cfg.Tracing.Endpoint,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: serviceVersion,
		Insecure:       cfg.Tracing.Insecure,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configurar trazas")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Error().Err(err).Msg("cerrar trazas")
		}
	}()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conectar a PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("conexión a PostgreSQL establecida")

	repos := postgres.NewRepos(pool)
	txRunner := postgres.NewTxRunner(pool)
	userRepo := postgres.NewUserRepository(pool)

	var priceCache ports.PriceCache = ports.NoopPriceCache{}
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisPriceCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := redisCache.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, precios sin caché")
			_ = redisCache.Close()
		} else {
			defer redisCache.Close()
			priceCache = redisCache
			log.Info().Str("addr", cfg.Redis.Addr).Msg("caché de precios en Redis")
		}
	}

	var publisher ports.MovementPublisher = ports.NoopPublisher{}
	if cfg.Kafka.Enabled() {
		kafkaPub := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.MovementsTopic, cfg.Kafka.PublishTimeout)
		defer func() {
			if err := kafkaPub.Close(); err != nil {
				log.Error().Err(err).Msg("cerrar publicador kafka")
			}
		}()
		publisher = kafkaPub
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.MovementsTopic).Msg("publicación de movimientos en Kafka")
	}

	prices := pricing.NewResolver(txRunner, repos.Prices, repos.Variants, priceCache, cfg.Redis.PriceCacheTTL, log)
	checkoutEngine := checkout.NewEngine(txRunner, repos.Variants, repos.Invoices, prices, publisher, log)
	receipts := checkout.NewReceiptUseCase(repos.Invoices, repos.Stores, repos.Variants, infrapdf.NewMarotoReceiptGenerator())

	authUC := auth.NewAuthUseCase(userRepo, repos.Stores, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.NewErrorHandler(log),
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		StoreUC:   catalog.NewStoreUseCase(repos.Stores),
		VariantUC: catalog.NewVariantUseCase(repos.Variants),
		Ledger:    ledger.NewService(txRunner, repos.Stock, repos.Movements, log),
		Prices:    prices,
		Shifts:    shift.NewService(txRunner, repos.Shifts, log),
		Checkout:  checkoutEngine,
		Receipts:  receipts,
		Returns:   returns.NewEngine(txRunner, repos.Returns, cfg.Policy.ReturnApprovalThreshold, publisher, log),
		Purchases: purchasing.NewEngine(txRunner, repos.Purchases, publisher, log),
		Transfers: transfer.NewEngine(txRunner, repos.Transfers, publisher, log),
		JWTSecret: cfg.JWT.Secret,
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
