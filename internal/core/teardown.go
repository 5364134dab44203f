package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/auto-dns/vinyldns-batch-sample/internal/session"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

// teardown abandons the forward zone, then the reverse zone, and deletes
// the group only once both zones are confirmed gone.
func (o *Orchestrator) teardown(ctx context.Context, sess *session.Session) error {
	log := o.logger.With().Str("session", sess.ID).Logger()
	if !sess.Provisioned() {
		return o.forget(ctx, sess)
	}

	log.Info().Msg("Cleaning up...")
	sess.Advance(session.PhaseTeardown)
	o.journalBestEffort(ctx, sess)

	var errs []error
	zonesGone := true
	for _, z := range []struct {
		name string
		id   *string
	}{
		{sess.ForwardZoneName, &sess.ForwardZoneID},
		{sess.ReverseZoneName, &sess.ReverseZoneID},
	} {
		if *z.id == "" {
			continue
		}
		if err := o.abandonZone(ctx, *z.id); err != nil {
			log.Error().Err(err).Msgf("Unable to abandon zone %s", z.name)
			errs = append(errs, fmt.Errorf("abandon zone %s: %w", z.name, err))
			zonesGone = false
			continue
		}
		log.Info().Msgf("Zone %s abandoned", z.name)
		*z.id = ""
		o.journalBestEffort(ctx, sess)
	}

	if sess.GroupID != "" {
		if !zonesGone {
			errs = append(errs, fmt.Errorf("group %s kept: its zones are not confirmed absent", sess.GroupID))
		} else if err := o.api.DeleteGroup(ctx, sess.GroupID); err != nil {
			log.Error().Err(err).Msgf("Unable to delete group %s", sess.GroupID)
			errs = append(errs, fmt.Errorf("delete group %s: %w", sess.GroupID, err))
		} else {
			log.Info().Msgf("Group %s deleted", sess.GroupID)
			sess.GroupID = ""
		}
	}

	if len(errs) > 0 {
		o.journalBestEffort(ctx, sess)
		return &PhaseError{Phase: session.PhaseTeardown, Err: errors.Join(errs...)}
	}
	return o.forget(ctx, sess)
}

// abandonZone deletes a zone and waits until fetching it reports not found.
func (o *Orchestrator) abandonZone(ctx context.Context, zoneID string) error {
	if err := o.api.DeleteZone(ctx, zoneID); err != nil {
		return err
	}
	return o.await(ctx, "zone_absent", func(ctx context.Context) (bool, error) {
		_, err := o.api.GetZone(ctx, zoneID)
		switch {
		case err == nil:
			return false, nil
		case errors.Is(err, vinyldns.ErrNotFound):
			return true, nil
		default:
			return o.pending(err, "zone", zoneID)
		}
	})
}

func (o *Orchestrator) forget(ctx context.Context, sess *session.Session) error {
	sess.Advance(session.PhaseDone)
	if err := o.store.Remove(ctx, sess.ID); err != nil {
		o.logger.Warn().Err(err).Str("session", sess.ID).Msg("Unable to remove session from journal")
	}
	return nil
}

func (o *Orchestrator) journalBestEffort(ctx context.Context, sess *session.Session) {
	if err := o.save(ctx, sess); err != nil {
		o.logger.Warn().Err(err).Str("session", sess.ID).Msg("Unable to journal session")
	}
}
