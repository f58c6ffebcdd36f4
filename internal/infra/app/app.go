package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/instreg/registration-admin/internal/core/domain"
	"github.com/instreg/registration-admin/internal/core/port"
	"github.com/instreg/registration-admin/internal/infra/config"
	"github.com/instreg/registration-admin/internal/infra/database"
	kafkainfra "github.com/instreg/registration-admin/internal/infra/kafka"
	"github.com/instreg/registration-admin/internal/infra/localization"
	"github.com/instreg/registration-admin/internal/infra/logger"
	"github.com/instreg/registration-admin/internal/infra/metrics"
	"github.com/instreg/registration-admin/internal/infra/principal"
	postgresrepo "github.com/instreg/registration-admin/internal/repository/postgres"
	"github.com/instreg/registration-admin/internal/usecase"
)

// Services is the in-process surface the presentation layer consumes.
type Services struct {
	Permissions *usecase.PermissionService
	Roles       *usecase.RoleService
	Overrides   *usecase.OverrideService
	Authorizer  *usecase.AuthorizationService
	Access      *usecase.AccessControl
}

// Application wires the access-control core: storage, event publishing,
// catalog services and the bootstrap synchronizers.
type Application struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	pool     *pgxpool.Pool
	producer *kafkainfra.Producer
	services Services
	permSync *usecase.PermissionSynchronizer
	roleSync *usecase.RoleTemplateSynchronizer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if cfg.Bootstrap.Migrate {
		if err := database.Migrate(cfg.Postgres, log); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var producer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	resolver := principal.NewContextResolver()
	decisions := metrics.NewDecisionRecorder(cfg.Telemetry.MetricsNamespace)

	permissionService := usecase.NewPermissionService(repos.Permissions, repos.Audit, resolver, log)
	roleService := usecase.NewRoleService(repos.Roles, repos.Permissions, repos.Audit, resolver, eventPublisher, log)
	overrideService := usecase.NewOverrideService(repos.Overrides, repos.Permissions, repos.Audit, resolver, log)
	authorizationService := usecase.NewAuthorizationService(repos.Permissions, repos.Roles, repos.Overrides, decisions)
	accessControl := usecase.NewAccessControl(authorizationService)

	permSync := usecase.NewPermissionSynchronizer(domain.PermissionManifest(), permissionService, log)
	roleSync := usecase.NewRoleTemplateSynchronizer(domain.DefaultRoleTemplates(), roleService, permissionService, localization.NewStaticCatalog(), log)

	return &Application{
		cfg:      cfg,
		logger:   log,
		pool:     pool,
		producer: producer,
		services: Services{
			Permissions: permissionService,
			Roles:       roleService,
			Overrides:   overrideService,
			Authorizer:  authorizationService,
			Access:      accessControl,
		},
		permSync: permSync,
		roleSync: roleSync,
	}, nil
}

// Services returns the wired service set.
func (a *Application) Services() Services {
	return a.services
}

// Sync runs the bootstrap synchronizers in dependency order: the permission
// catalog first, then the role templates that reference it. It is intended to
// run exclusively at startup or deploy time, not alongside live mutations.
func (a *Application) Sync(ctx context.Context) error {
	if a.cfg.Bootstrap.SyncCatalog {
		inserted, err := a.permSync.Run(ctx)
		if err != nil {
			return fmt.Errorf("synchronize permission catalog: %w", err)
		}
		a.logger.Info("permission synchronizer finished", zap.Int("inserted", inserted))
	}

	if a.cfg.Bootstrap.SyncTemplates {
		if err := a.roleSync.Run(ctx); err != nil {
			return fmt.Errorf("synchronize role templates: %w", err)
		}
		a.logger.Info("role template synchronizer finished")
	}

	return nil
}

// Close releases the pool and the Kafka producer.
func (a *Application) Close() {
	defer func() {
		_ = a.logger.Sync()
	}()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
