package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/4dave/corralio/config"
	"github.com/4dave/corralio/routes"
	"github.com/4dave/corralio/services"
	"github.com/4dave/corralio/store"
	"github.com/4dave/corralio/utils"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	app := &cli.App{
		Name:   "corralio",
		Usage:  "Plan events, send invites and collect RSVPs",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create or update the database schema",
				Action: migrate,
			},
			{
				Name:  "seed",
				Usage: "Insert a demo user and event",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Value: "demo@example.com", Usage: "Owner of the seeded event"},
				},
				Action: seed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openStore returns the Postgres store, or the in-memory stand-in when no
// DATABASE_URL is set. The returned db is nil in demo mode.
func openStore(cfg *config.Config) (store.Store, *sql.DB, error) {
	if cfg.Demo {
		return store.NewMemoryStore(), nil, nil
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	utils.SafeInfo("✅ Database connected successfully")
	return store.NewPostgresStore(db), db, nil
}

func serve(c *cli.Context) error {
	cfg := config.Load()
	if cfg.Secret() == "" {
		return errors.New("AUTH_SECRET is required when DATABASE_URL is set")
	}

	s, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		if err := config.RunMigrations(db); err != nil {
			return err
		}
	} else if _, err := store.Seed(c.Context, s, "demo@example.com"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := routes.NewApp(cfg, s, services.NewMailer(cfg.ResendAPIKey, cfg.EmailFrom))
	if err != nil {
		return err
	}
	router, err := routes.NewRouter(ctx, application)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	utils.LogStartup("Corralio", version, cfg.Port, cfg.Demo)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		application.WS.M.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func migrate(c *cli.Context) error {
	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.RunMigrations(db); err != nil {
		return err
	}
	utils.SafeInfo("✅ Migrations applied")
	return nil
}

func seed(c *cli.Context) error {
	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := config.RunMigrations(db); err != nil {
		return err
	}

	s := store.NewPostgresStore(db)
	e, err := store.Seed(c.Context, s, c.String("email"))
	if err != nil {
		return err
	}
	utils.SafeInfo("🌱 Seeded %q at %s/e/%s", e.Title, cfg.AppURL, e.ShareToken)
	return nil
}
