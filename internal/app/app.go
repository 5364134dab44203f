package app

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-dns/vinyldns-batch-sample/internal/config"
	"github.com/auto-dns/vinyldns-batch-sample/internal/core"
	"github.com/auto-dns/vinyldns-batch-sample/internal/metrics"
	"github.com/auto-dns/vinyldns-batch-sample/internal/poll"
	"github.com/auto-dns/vinyldns-batch-sample/internal/session"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

type App struct {
	cfg          *config.Config
	store        session.Store
	orchestrator *core.Orchestrator
	metrics      *metrics.Recorder
	logger       zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	rec := metrics.New()

	// VinylDNS API
	client, err := vinyldns.NewClient(vinyldns.Config{
		URL:       cfg.VinylDNS.URL,
		AccessKey: cfg.VinylDNS.AccessKey,
		SecretKey: cfg.VinylDNS.SecretKey,
		Region:    cfg.VinylDNS.Region,
		Timeout:   config.Seconds(cfg.VinylDNS.Timeout),
	}, logger)
	if err != nil {
		return nil, err
	}
	client.WithObserver(rec.ObserveRemoteCall)

	// Session journal
	store, err := newStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Orchestrator
	waiter := poll.NewWaiter(cfg.Poll.MaxAttempts, config.Seconds(cfg.Poll.Interval))
	waiter.Factor = cfg.Poll.BackoffFactor
	waiter.MaxInterval = config.Seconds(cfg.Poll.MaxInterval)
	waiter.Timeout = config.Seconds(cfg.Poll.Timeout)

	settings := core.Settings{
		GroupName:   cfg.Group.Name,
		GroupEmail:  cfg.Group.Email,
		Members:     cfg.Group.Members,
		Admins:      cfg.Group.Admins,
		ForwardZone: cfg.Zones.Forward,
		ReverseZone: cfg.Zones.Reverse,
		ZoneEmail:   cfg.Zones.Email,

		TeardownTimeout: config.Seconds(cfg.Teardown.Timeout),
	}
	orch := core.NewOrchestrator(logger, settings, client, store, waiter, rec, os.Stdout)

	return &App{
		cfg:          cfg,
		store:        store,
		orchestrator: orch,
		metrics:      rec,
		logger:       logger,
	}, nil
}

// newStore journals to etcd when endpoints are configured and to memory
// otherwise.
func newStore(cfg *config.Config, logger zerolog.Logger) (session.Store, error) {
	if len(cfg.Etcd.Endpoints) == 0 {
		logger.Debug().Msg("No etcd endpoints configured, journaling sessions in memory")
		return session.NewMemoryStore(), nil
	}

	etcdClient, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: config.Seconds(cfg.Etcd.DialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return session.NewEtcdStore(etcdClient, &cfg.Etcd, hostname, logger), nil
}

// Run provisions, exercises and tears down the configured scenario.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("Application starting")
	sc, err := core.NewScenario(a.cfg.Scenario)
	if err != nil {
		return err
	}

	err = a.orchestrator.Run(ctx, sc)
	if core.IsBatchRejected(err) {
		a.logger.Warn().Msg("The API rejected a batch change; check that the zones exist and the records are owned by the group")
	}
	a.finish("run", err)
	return err
}

// Cleanup tears down whatever earlier runs left behind in the journal.
func (a *App) Cleanup(ctx context.Context) error {
	a.logger.Info().Msg("Cleaning up leftover sessions")
	err := a.orchestrator.Cleanup(ctx)
	a.finish("cleanup", err)
	return err
}

func (a *App) finish(command string, err error) {
	a.metrics.RunFinished(command, err)
	if a.cfg.Metrics.Textfile == "" {
		return
	}
	if werr := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); werr != nil {
		a.logger.Warn().Err(werr).Msgf("Unable to write metrics to %s", a.cfg.Metrics.Textfile)
	}
}

func (a *App) Close() error {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			return fmt.Errorf("close session store: %w", err)
		}
	}
	return nil
}
