package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"sincelast/internal/bootstrap/config"
	"sincelast/internal/bootstrap/database"
	"sincelast/internal/bootstrap/logging"
	sqliterepo "sincelast/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "sincelast/internal/infrastructure/persistence/sqlite/uow"
	"sincelast/internal/ports"
	"sincelast/internal/usecase/auth"
	"sincelast/internal/usecase/tracker"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewUserRepository,
			fx.As(new(ports.UserRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewCategoryRepository,
			fx.As(new(ports.CategoryRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewIssueRepository,
			fx.As(new(ports.IssueRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewSolutionRepository,
			fx.As(new(ports.SolutionRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewAccidentRepository,
			fx.As(new(ports.AccidentRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(tracker.NewService),
	fx.Provide(provideAuthService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideAuthService(cfg config.Config, users ports.UserRepository) *auth.Service {
	codec := auth.NewSessionCodec(cfg.Auth.SessionSecret)
	return auth.NewService(users, codec, cfg.Auth.BcryptCost)
}
