package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	accounts "github.com/goliatone/go-accounts"
	"github.com/goliatone/go-accounts/config"
	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App holds every long-lived dependency, built once at startup. Nothing in
// here is a package-level singleton; handlers reach everything through the
// controller options.
type App struct {
	config    *gconfig.Container[*config.BaseConfig]
	bunDB     *bun.DB
	auth      accounts.Authenticator
	routeAuth *accounts.RouteAuthenticator
	repo      accounts.RepositoryManager
	srv       router.Server[*fiber.App]
	logger    *glog.BaseLogger
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
		glog.WithLevel(glog.Trace),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := gconfig.New(&config.BaseConfig{}).
		WithLogger(lgr.GetLogger("config"))

	ctx := context.Background()
	if err := cfg.Load(ctx); err != nil {
		panic(err)
	}

	app := &App{
		config: cfg,
		logger: lgr,
	}

	if app.Config().GetApp().GetDebug() {
		fmt.Println(print.MaybeHighlightJSON(cfg.Raw()))
	}

	if err := WithPersistence(ctx, app); err != nil {
		panic(err)
	}

	if err := WithHTTPServer(ctx, app); err != nil {
		panic(err)
	}

	if err := WithAuth(ctx, app); err != nil {
		panic(err)
	}

	RegisterRoutes(app)

	app.srv.Serve(app.Config().GetServer().GetAddr())

	sig := WaitExitSignal()
	lgr.GetLogger("app").Info("shutting down", "signal", sig.String())

	if app.bunDB != nil {
		if err := app.bunDB.Close(); err != nil {
			lgr.GetLogger("app").Error("closing database", "error", err)
		}
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := sql.Open(sqliteshim.ShimName, app.Config().GetPersistence().GetDSN())
	if err != nil {
		return err
	}

	persistence.RegisterModel((*accounts.User)(nil))
	persistence.RegisterModel((*accounts.PasswordReset)(nil))

	cfg := app.Config().GetPersistence()
	dialect := sqlitedialect.New()
	client, err := persistence.New(cfg, db, dialect)
	if err != nil {
		return err
	}

	client.SetLogger(app.GetLogger("persistence"))

	migrationsFS, err := fs.Sub(accounts.GetMigrationsFS(), "data/sql/migrations")
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

	return nil
}

func WithHTTPServer(ctx context.Context, app *App) error {
	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:      true,
			EnablePrintRoutes: app.Config().GetApp().GetDebug(),
			StrictRouting:     false,
		}))
	})

	srv.Router().WithLogger(app.GetLogger("router"))

	app.srv = srv

	return nil
}

func WithAuth(ctx context.Context, app *App) error {
	cfg := app.Config().GetAuth()

	repo := accounts.NewRepositoryManager(app.bunDB)
	if err := repo.Validate(); err != nil {
		return err
	}
	app.repo = repo

	userProvider := accounts.NewUserProvider(
		repo.Users(),
		accounts.NewHasher(cfg.GetBcryptCost()),
	).WithLogger(app.GetLogger("auth:prv"))

	authenticator := accounts.NewAuthenticator(userProvider, cfg).
		WithLogger(app.GetLogger("auth"))
	app.auth = authenticator

	resolver := accounts.NewCurrentUserResolver(
		authenticator.TokenService(),
		userProvider,
	).WithLogger(app.GetLogger("auth:resolver"))

	routeAuth, err := accounts.NewHTTPAuthenticator(authenticator, resolver, cfg)
	if err != nil {
		return err
	}
	routeAuth.Logger = app.GetLogger("auth:http")
	app.routeAuth = routeAuth

	return nil
}

func RegisterRoutes(app *App) {
	accounts.RegisterAccountRoutes(app.srv.Router().Group("/"),
		accounts.WithControllerRepo(app.repo),
		accounts.WithControllerAuthenticator(app.auth),
		accounts.WithControllerRouteAuth(app.routeAuth),
		accounts.WithControllerConfig(app.Config().GetAuth()),
		accounts.WithControllerLogger(app.GetLogger("accounts:ctrl")),
	)
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
