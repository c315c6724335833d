package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/farmacia-logistica/internal/application/auth"
	"github.com/jhoicas/farmacia-logistica/internal/application/inventory"
	domaininv "github.com/jhoicas/farmacia-logistica/internal/domain/inventory"
	"github.com/jhoicas/farmacia-logistica/internal/domain/repository"
	infraaudit "github.com/jhoicas/farmacia-logistica/internal/infrastructure/audit"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/lock"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/memory"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/metrics"
	"github.com/jhoicas/farmacia-logistica/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/farmacia-logistica/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/farmacia-logistica/internal/interfaces/http"
	"github.com/jhoicas/farmacia-logistica/pkg/config"
	"github.com/jhoicas/farmacia-logistica/pkg/logger"
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
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer st.close()

	checks := map[string]httpRouter.HealthCheck{"db": st.health}
	var locker inventory.KeyLocker = lock.NewMemoryLocker(cfg.Logistics.LockTimeout)
	if cfg.Logistics.Locker == "redis" {
		rc, err := infraredis.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rc.Close()
		locker = infraredis.NewLocker(rc.Client, infraredis.LockerConfig{
			TTL:     cfg.Redis.LockTTL,
			Timeout: cfg.Logistics.LockTimeout,
		})
		checks["redis"] = rc.Health
		log.Info().Str("addr", cfg.Redis.Addr).Msg("cerrojo distribuido en Redis")
	}

	writers := []infraaudit.Writer{infraaudit.NewLogWriter(log)}
	kafkaWriter, err := infraaudit.NewKafkaWriter(cfg.Kafka)
	if err != nil {
		log.Fatal().Err(err).Msg("cliente Kafka")
	}
	if kafkaWriter != nil {
		defer kafkaWriter.Close()
		writers = append(writers, kafkaWriter)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("auditoría hacia Kafka")
	}
	publisher := infraaudit.NewPublisher(infraaudit.Config{
		BufferSize:      cfg.Audit.BufferSize,
		FailureLimit:    cfg.Audit.FailureLimit,
		FailureCooldown: cfg.Audit.FailureCooldown,
	}, m, log.Component("audit"), writers...)
	auditDone := make(chan struct{})
	go func() {
		defer close(auditDone)
		publisher.Run(ctx)
	}()

	deps := inventory.Deps{
		Tx:        st.tx,
		Locker:    locker,
		Locations: st.locations,
		Movements: st.movements,
		Lots:      st.lots,
		Shipments: st.shipments,
		Audit:     publisher,
		Metrics:   m,
		Logger:    log.Component("inventory"),
		Retry: inventory.RetryConfig{
			MaxRetries:      cfg.Logistics.BusyRetries,
			InitialInterval: cfg.Logistics.BusyBackoff,
			MaxInterval:     cfg.Logistics.BusyMaxBackoff,
		},
	}
	policy := domaininv.Policy{
		Threshold:    cfg.Logistics.AuthorizationThreshold,
		PinMinLength: cfg.Logistics.PinMinLength,
		PinMaxLength: cfg.Logistics.PinMaxLength,
	}
	authorizer := inventory.NewAuthorizer(policy, auth.NewPinVerifier(st.credentials))
	stockable := domaininv.ParseConditionSet(cfg.Logistics.StockableConditions)

	ledger := inventory.NewMovementLedger(deps)
	shipmentUC := inventory.NewShipmentUseCase(deps, authorizer, stockable)
	pendingUC := inventory.NewPendingUseCase(st.shipments, st.orders, st.locations, log.Component("pending"))
	stockAuditUC := inventory.NewStockAuditUseCase(ledger, st.lots)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Farmacia Logística API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Shipments:  shipmentUC,
		Ledger:     ledger,
		Pending:    pendingUC,
		StockAudit: stockAuditUC,
		Locations:  st.locations,
		Health:     httpRouter.NewHealthHandler(cfg.App.Name, checks),
		Gatherer:   reg,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	select {
	case <-auditDone:
	case <-shutdownCtx.Done():
		log.Warn().Int("pending", publisher.Pending()).Msg("eventos de auditoría sin entregar")
	}

	log.Info().Msg("aplicación detenida")
}

// storage adaptadores de persistencia elegidos según la configuración.
type storage struct {
	tx          inventory.TxRunner
	locations   repository.LocationRepository
	movements   repository.MovementEntryRepository
	lots        repository.StockLotRepository
	shipments   repository.ShipmentRepository
	orders      repository.PurchaseOrderRepository
	credentials repository.SupervisorCredentialRepository
	health      httpRouter.HealthCheck
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if !cfg.DB.Enabled() {
		log.Warn().Msg("sin base de datos configurada: adaptadores en memoria (los datos no persisten)")
		store := memory.NewStore()
		if cfg.App.Env == "development" {
			seedDemo(store)
		}
		return &storage{
			tx:          store,
			locations:   store.Locations(),
			movements:   store.Movements(),
			lots:        store.Lots(),
			shipments:   store.Shipments(),
			orders:      store.PurchaseOrders(),
			credentials: store.Credentials(),
			close:       func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	return &storage{
		tx:          postgres.NewTxRunner(pool, cfg.Logistics.LockTimeout),
		locations:   postgres.NewLocationRepository(pool),
		movements:   postgres.NewMovementEntryRepository(pool),
		lots:        postgres.NewStockLotRepository(pool),
		shipments:   postgres.NewShipmentRepository(pool),
		orders:      postgres.NewPurchaseOrderRepository(pool),
		credentials: postgres.NewSupervisorCredentialRepository(pool),
		health:      pool.Ping,
		close:       pool.Close,
	}, nil
}
