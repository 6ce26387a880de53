package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/config"
	httpapi "github.com/sevenlabsxyz/evento-client-sub006/internal/http"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/jobs"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/observability"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/pledge"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/sysutil"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "listen port"},
			&cli.StringFlag{Name: "db-driver", Usage: "sqlite|postgres"},
			&cli.StringFlag{Name: "db-path", Usage: "SQLite file"},
			&cli.StringFlag{Name: "database-url", Usage: "Postgres DSN"},
			&cli.StringFlag{Name: "queue-url", Usage: "SQS queue for notification jobs"},
			&cli.StringFlag{Name: "status-url", Usage: "remote pledge status base URL"},
			&cli.BoolFlag{Name: "swagger", Usage: "serve /swagger"},
		},
		Action: serve,
	}
}

func invoiceCommand() *cli.Command {
	return &cli.Command{
		Name:      "invoice",
		Usage:     "resolve a Lightning Address and print an invoice",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "address", Aliases: []string{"a"}, Usage: "user@domain", Required: true},
			&cli.Int64Flag{Name: "amount", Aliases: []string{"n"}, Usage: "amount in sats", Required: true},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			ctx := log.WithContext(c.Context)
			inv, err := newResolver(cfg).ResolveAndRequestInvoice(ctx, c.String("address"), c.Int64("amount"))
			if err != nil {
				return err
			}
			return printJSON(c, inv)
		},
	}
}

func trackCommand() *cli.Command {
	return &cli.Command{
		Name:  "track",
		Usage: "poll a pledge until it settles, expires or times out",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "pledge ID", Required: true},
			&cli.StringFlag{Name: "status-url", Usage: "remote pledge status base URL"},
			&cli.StringFlag{Name: "db-driver", Usage: "sqlite|postgres"},
			&cli.StringFlag{Name: "db-path", Usage: "SQLite file"},
			&cli.StringFlag{Name: "database-url", Usage: "Postgres DSN"},
		},
		Action: track,
	}
}

// loadConfig reads dotenv files and the environment, applies flag overrides,
// and installs the global logger.
func loadConfig(c *cli.Context) (config.Config, zerolog.Logger, error) {
	if err := config.LoadDotEnv(c.StringSlice("env-file")...); err != nil {
		return config.Config{}, zerolog.Nop(), fmt.Errorf("load env files: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	applyFlags(c, &cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, zerolog.Nop(), fmt.Errorf("invalid flags: %w", err)
	}
	log := sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	return cfg, log, nil
}

// flagSource is the subset of *cli.Context used for overrides.
type flagSource interface {
	IsSet(name string) bool
	String(name string) string
	Bool(name string) bool
}

// applyFlags overrides cfg with every flag the user set explicitly.
func applyFlags(c flagSource, cfg *config.Config) {
	str := func(name string, dst *string) {
		if c.IsSet(name) {
			*dst = c.String(name)
		}
	}
	str("log-level", &cfg.LogLevel)
	str("port", &cfg.Port)
	str("db-driver", &cfg.DB.Driver)
	str("db-path", &cfg.DB.Path)
	str("database-url", &cfg.DB.URL)
	str("queue-url", &cfg.Notify.QueueURL)
	str("status-url", &cfg.Poll.StatusBaseURL)
	if c.IsSet("log-pretty") {
		cfg.LogPretty = c.Bool("log-pretty")
	}
	if c.IsSet("swagger") {
		cfg.SwaggerEnabled = c.Bool("swagger")
	}
}

func serve(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(a.db); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	cleanup := jobs.NewScheduler(&jobs.Cleanup{DB: a.db}, log)
	if err := cleanup.Start(ctx, cfg.CleanupSchedule); err != nil {
		return err
	}
	defer cleanup.Stop()

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, a.deps, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("queue", a.queueKind).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

func track(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close(a.db)

	reason, err := a.pledges.Track(ctx, c.String("id"), func(ev pledge.Event) error {
		return printJSON(c, trackLine(ev))
	})
	if err != nil {
		return err
	}
	log.Info().Str("reason", string(reason)).Msg("tracking finished")
	return nil
}

type trackOutput struct {
	PledgeID  string           `json:"pledgeId"`
	Snapshot  *pledge.Snapshot `json:"snapshot,omitempty"`
	Error     string           `json:"error,omitempty"`
	ElapsedMs int64            `json:"elapsedMs"`
	Final     bool             `json:"final,omitempty"`
}

func trackLine(ev pledge.Event) trackOutput {
	out := trackOutput{
		PledgeID:  ev.PledgeID,
		Snapshot:  ev.Snapshot,
		ElapsedMs: ev.Elapsed.Milliseconds(),
		Final:     ev.Final,
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	return enc.Encode(v)
}
