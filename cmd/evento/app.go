package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/config"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/dedup"
	httpapi "github.com/sevenlabsxyz/evento-client-sub006/internal/http"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/lnurl"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/pledge"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/queue"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/repo"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/sats"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/services"
)

// app is the wired service graph shared by the commands.
type app struct {
	db        *gorm.DB
	deps      httpapi.Deps
	pledges   *services.PledgeService
	queueKind string
}

func newResolver(cfg config.Config) *lnurl.Resolver {
	return lnurl.NewResolver(&lnurl.Config{
		Timeout:   cfg.Lightning.Timeout,
		Scheme:    cfg.Lightning.Scheme,
		Fallback:  &sats.Bounds{Min: cfg.Lightning.FallbackMinSats, Max: cfg.Lightning.FallbackMaxSats},
		UserAgent: "evento/" + version,
	})
}

// build opens the database and constructs every service from cfg.
func build(ctx context.Context, cfg config.Config) (*app, error) {
	log := zerolog.Ctx(ctx)

	db, err := repo.Open(cfg.DB.Driver, cfg.DB.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var (
		jobQueue  services.JobQueue
		queueKind string
	)
	if cfg.Notify.QueueURL != "" {
		pub, err := queue.NewSQSPublisher(ctx, cfg.Notify.AWSRegion, cfg.Notify.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("sqs: %w", err)
		}
		jobQueue, queueKind = pub, "sqs"
	} else {
		jobQueue, queueKind = queue.NewOutbox(db), "outbox"
	}
	log.Debug().Str("queue", queueKind).Str("db", cfg.DB.Driver).Msg("backends selected")

	invoices := &services.InvoiceService{
		Resolver:       newResolver(cfg),
		DB:             db,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	notifications := services.NewNotificationService(
		dedup.New(dedup.Options{Window: cfg.Notify.DedupeWindow, HighWater: cfg.Notify.DedupeHighWater}),
		jobQueue,
	)
	pledges := &services.PledgeService{
		DB: db,
		Poller: pledge.NewPoller(pledge.Schedule{
			FastInterval: cfg.Poll.FastInterval,
			FastPhase:    cfg.Poll.FastPhase,
			SlowInterval: cfg.Poll.SlowInterval,
			SlowPhase:    cfg.Poll.SlowPhase,
		}, nil),
		Invoices: invoices,
	}
	if cfg.Poll.StatusBaseURL != "" {
		pledges.Remote = pledge.NewStatusClient(cfg.Poll.StatusBaseURL, &http.Client{Timeout: cfg.Lightning.Timeout})
	}

	return &app{
		db: db,
		deps: httpapi.Deps{
			Invoices:          invoices,
			Notifications:     notifications,
			Pledges:           pledges,
			IdempotencyLookup: invoices.HasReplay,
		},
		pledges:   pledges,
		queueKind: queueKind,
	}, nil
}
