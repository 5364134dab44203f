package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/auto-dns/vinyldns-batch-sample/internal/poll"
	"github.com/auto-dns/vinyldns-batch-sample/internal/session"
)

// Settings describes the group and zones a run provisions.
type Settings struct {
	GroupName   string
	GroupEmail  string
	Members     []string
	Admins      []string
	ForwardZone string
	ReverseZone string
	ZoneEmail   string
	// TeardownTimeout bounds cleanup once the run context is gone. Zero
	// leaves it to the waiter's attempt budget.
	TeardownTimeout time.Duration
}

// Orchestrator sequences group and zone provisioning, the add, replace and
// delete batches, and the teardown that always follows them.
type Orchestrator struct {
	api      dnsAPI
	store    session.Store
	waiter   *poll.Waiter
	metrics  recorder
	out      io.Writer
	settings Settings
	logger   zerolog.Logger
}

func NewOrchestrator(logger zerolog.Logger, settings Settings, api dnsAPI, store session.Store, waiter *poll.Waiter, metrics recorder, out io.Writer) *Orchestrator {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if out == nil {
		out = io.Discard
	}
	return &Orchestrator{
		api:      api,
		store:    store,
		waiter:   waiter,
		metrics:  metrics,
		out:      out,
		settings: settings,
		logger:   logger,
	}
}

type phase struct {
	name session.Phase
	run  func(ctx context.Context, sess *session.Session) error
}

func (o *Orchestrator) phases(sc Scenario) []phase {
	return []phase{
		{session.PhaseProvisionGroup, o.provisionGroup},
		{session.PhaseProvisionForwardZone, func(ctx context.Context, sess *session.Session) error {
			return o.provisionZone(ctx, sess, forwardZone)
		}},
		{session.PhaseProvisionReverseZone, func(ctx context.Context, sess *session.Session) error {
			return o.provisionZone(ctx, sess, reverseZone)
		}},
		{session.PhaseAddRecords, func(ctx context.Context, sess *session.Session) error {
			return o.addRecords(ctx, sess, sc)
		}},
		{session.PhaseReplaceRecords, func(ctx context.Context, sess *session.Session) error {
			return o.replaceRecords(ctx, sess, sc)
		}},
		{session.PhaseDeleteRecords, func(ctx context.Context, sess *session.Session) error {
			return o.deleteRecords(ctx, sess, sc)
		}},
	}
}

// Run executes the whole lifecycle while holding the store lock for the
// forward zone. Teardown runs whatever happens; its failures are joined
// after the original error.
func (o *Orchestrator) Run(ctx context.Context, sc Scenario) error {
	if len(sc.Originals) != len(sc.Replacements) {
		return fmt.Errorf("scenario has %d records but %d replacements", len(sc.Originals), len(sc.Replacements))
	}
	return o.store.LockTransaction(ctx, []string{session.LockKey(o.settings.ForwardZone)}, func() error {
		return o.run(ctx, sc)
	})
}

func (o *Orchestrator) run(ctx context.Context, sc Scenario) (err error) {
	sess := session.New(o.settings.ForwardZone, o.settings.ReverseZone)
	log := o.logger.With().Str("session", sess.ID).Logger()
	log.Info().Msg("Starting batch change run")

	defer func() {
		if tdErr := o.detachedTeardown(ctx, sess); tdErr != nil {
			err = errors.Join(err, tdErr)
		}
	}()

	for _, p := range o.phases(sc) {
		if err = o.runPhase(ctx, sess, p); err != nil {
			log.Error().Err(err).Str("phase", string(p.name)).Msg("Phase failed, tearing down")
			return err
		}
	}
	log.Info().Msg("All batch changes completed")
	return nil
}

func (o *Orchestrator) runPhase(ctx context.Context, sess *session.Session, p phase) error {
	sess.Advance(p.name)
	o.logger.Info().Str("session", sess.ID).Str("phase", string(p.name)).Msg("Entering phase")

	start := time.Now()
	err := p.run(ctx, sess)
	o.metrics.ObservePhase(string(p.name), time.Since(start), err)
	if err != nil {
		return &PhaseError{Phase: p.name, Err: err}
	}
	return nil
}

// detachedTeardown keeps going after ctx is cancelled so a SIGINT still
// deprovisions what the run created.
func (o *Orchestrator) detachedTeardown(ctx context.Context, sess *session.Session) error {
	tctx := context.WithoutCancel(ctx)
	if o.settings.TeardownTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(tctx, o.settings.TeardownTimeout)
		defer cancel()
	}
	return o.teardown(tctx, sess)
}

// Cleanup tears down sessions journaled by earlier runs that never finished.
func (o *Orchestrator) Cleanup(ctx context.Context) error {
	if !o.store.Durable() {
		o.logger.Warn().Msg("Session journal is in memory, so sessions left by other processes are not visible; set etcd.endpoints to clean them up")
	}
	sessions, err := o.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		o.logger.Info().Msg("No leftover sessions to clean up")
		return nil
	}

	var errs []error
	for _, sess := range sessions {
		o.logger.Info().Msgf("Cleaning up %s", sess.Render())
		err := o.store.LockTransaction(ctx, []string{session.LockKey(sess.ForwardZoneName)}, func() error {
			return o.teardown(ctx, sess)
		})
		if err != nil {
			o.logger.Error().Err(err).Str("session", sess.ID).Msg("Cleanup failed")
			errs = append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) save(ctx context.Context, sess *session.Session) error {
	sess.Updated = time.Now()
	if err := o.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("journal session: %w", err)
	}
	return nil
}
