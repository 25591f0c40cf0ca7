// @title       Shop Catalog API
// @version     1.0
// @description Category tree, attribute schema and faceted product filtering.
// @BasePath    /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"shopcatalog/internal/config"
	"shopcatalog/pkg/database"

	"github.com/labstack/gommon/log"
	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "shopcatalog",
		Usage:   "Product catalog and faceted filter service",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Value:   ".env",
				Usage:   "dotenv file loaded before reading the environment",
				Sources: cli.EnvVars("SHOPCATALOG_ENV_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and background jobs",
				Action: runServe,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "migrate",
						Usage: "apply database migrations before serving",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Value: defaultShutdownTimeout,
						Usage: "grace period for in-flight requests",
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations",
				Action: runMigrate,
			},
			{
				Name:   "new-arrivals",
				Usage:  "Maintain the new arrival flags",
				Action: runNewArrivals,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "days",
						Usage: "flag products created within this many days (defaults to NEW_ARRIVAL_DAYS)",
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "unflag every product instead of refreshing",
					},
					&cli.StringFlag{
						Name:  "mark",
						Usage: "flag a single product by id",
					},
					&cli.StringFlag{
						Name:  "unmark",
						Usage: "unflag a single product by id",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("env-file"))
	if err != nil {
		return nil, err
	}
	setLogLevel(cfg.LogLevel)
	return cfg, nil
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(log.DEBUG)
	case "warn":
		log.SetLevel(log.WARN)
	case "error":
		log.SetLevel(log.ERROR)
	default:
		log.SetLevel(log.INFO)
	}
}

func runMigrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	log.Info("Migration complete")
	return nil
}

func runNewArrivals(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	app := newApplication(cfg, pool, nil)
	products := app.productService

	for _, flag := range []struct {
		name  string
		value bool
	}{{"mark", true}, {"unmark", false}} {
		raw := cmd.String(flag.name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("--%s: invalid product id %q", flag.name, raw)
		}
		if err := products.SetNewArrival(ctx, id, flag.value); err != nil {
			return err
		}
		log.Infof("Product %d new arrival=%t", id, flag.value)
		return nil
	}

	if cmd.Bool("clear") {
		cleared, err := products.ClearNewArrivals(ctx)
		if err != nil {
			return err
		}
		log.Infof("Cleared new arrival flag on %d product(s)", cleared)
		return nil
	}

	days := cfg.NewArrivalDays
	if raw := cmd.String("days"); raw != "" {
		if days, err = strconv.Atoi(raw); err != nil {
			return fmt.Errorf("--days: invalid number %q", raw)
		}
	}
	marked, unmarked, err := products.RefreshNewArrivals(ctx, days)
	if err != nil {
		return err
	}
	log.Infof("Marked %d and unmarked %d product(s) using a %d day window", marked, unmarked, days)
	return nil
}
