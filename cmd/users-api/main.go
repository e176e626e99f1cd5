package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-router"
	"github.com/goliatone/go-users"
	"github.com/goliatone/go-users/config"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type App struct {
	config *gconfig.Container[*config.BaseConfig]
	bunDB  *bun.DB
	repo   users.RepositoryManager
	auth   users.Authenticator
	srv    router.Server[*fiber.App]
	logger *glog.BaseLogger
}

func (a *App) Config() *config.BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Info),
		glog.WithName("users-api"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(config.DefaultConfig()).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithBootstrap(ctx, app); err != nil {
		panic(err)
	}

	app.srv.Serve(app.Config().GetServer().GetAddr())

	WaitExitSignal()
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		log.Fatal(err)
		return err
	}

	persistence.RegisterModel((*users.User)(nil))

	client, err := persistence.New(app.Config().GetPersistence(), db, sqlitedialect.New())
	if err != nil {
		log.Fatal(err)
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(users.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}
	client.RegisterDialectMigrations(
		migrationsFS,
		persistence.WithDialectSourceLabel("data/sql/migrations"),
		persistence.WithValidationTargets("postgres", "sqlite"),
	)
	if err := client.ValidateDialects(ctx); err != nil {
		return err
	}

	if err := client.Migrate(ctx); err != nil {
		return err
	}

	app.bunDB = client.DB()
	app.repo = users.NewRepositoryManager(client.DB())

	return app.repo.Validate()
}

func WithHTTPServer(_ context.Context, app *App) error {
	authCfg := app.Config().GetAuth()

	auther := users.NewAuthenticator(app.repo.Users(), authCfg).
		WithLogger(appLogger{app.GetLogger("auth")})
	app.auth = auther

	service := users.NewAccountService(
		app.repo.Users(),
		users.WithServiceLogger(appLogger{app.GetLogger("accounts")}),
		users.WithServiceComparer(users.ComparerForScheme(authCfg.GetSecretScheme())),
	)

	controller := users.NewAccountsController(
		service,
		auther,
		authCfg,
		appLogger{app.GetLogger("http")},
	)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))
	srv.Router().Use(users.TokenMiddleware(
		auther.TokenService(),
		authCfg,
		appLogger{app.GetLogger("auth:mw")},
	))

	controller.RegisterRoutes(
		srv.Router().Group("/api/users"),
		srv.Router().Group("/api/auth"),
	)

	app.srv = srv

	return nil
}

func WithBootstrap(ctx context.Context, app *App) error {
	_, err := users.EnsureDefaultAdmin(
		ctx,
		app.repo.Users(),
		users.ComparerForScheme(app.Config().GetAuth().GetSecretScheme()),
		app.Config().GetBootstrap(),
		appLogger{app.GetLogger("bootstrap")},
	)
	return err
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}

// appLogger adapts glog's key-value logger to the printf style logger the
// library components expect.
type appLogger struct {
	lgr glog.Logger
}

func (a appLogger) Debug(format string, args ...any) { a.lgr.Debug(fmt.Sprintf(format, args...)) }
func (a appLogger) Info(format string, args ...any)  { a.lgr.Info(fmt.Sprintf(format, args...)) }
func (a appLogger) Warn(format string, args ...any)  { a.lgr.Warn(fmt.Sprintf(format, args...)) }
func (a appLogger) Error(format string, args ...any) { a.lgr.Error(fmt.Sprintf(format, args...)) }
