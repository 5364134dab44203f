package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/auto-dns/vinyldns-batch-sample/internal/session"
	"github.com/auto-dns/vinyldns-batch-sample/internal/util"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

type zoneRole int

const (
	forwardZone zoneRole = iota
	reverseZone
)

func (r zoneRole) String() string {
	if r == reverseZone {
		return "reverse"
	}
	return "forward"
}

func memberIDs(ids []string) []vinyldns.MemberID {
	return util.Map(ids, func(id string) vinyldns.MemberID { return vinyldns.MemberID{ID: id} })
}

func (o *Orchestrator) provisionGroup(ctx context.Context, sess *session.Session) error {
	group, err := o.api.CreateGroup(ctx, vinyldns.CreateGroupRequest{
		Name:    o.settings.GroupName,
		Email:   o.settings.GroupEmail,
		Members: memberIDs(o.settings.Members),
		Admins:  memberIDs(o.settings.Admins),
	})
	if err != nil {
		return err
	}
	sess.GroupID = group.ID
	sess.GroupName = group.Name
	o.logger.Info().Str("group_id", group.ID).Msgf("Created group %s", o.settings.GroupName)
	return o.save(ctx, sess)
}

// provisionZone connects a zone and waits until it can be fetched. The zone
// id is journaled before waiting so teardown covers a zone that never
// becomes active.
func (o *Orchestrator) provisionZone(ctx context.Context, sess *session.Session, role zoneRole) error {
	name := sess.ForwardZoneName
	if role == reverseZone {
		name = sess.ReverseZoneName
	}

	o.logger.Info().Msgf("Connecting to %s zone %s", role, name)
	change, err := o.api.CreateZone(ctx, vinyldns.CreateZoneRequest{
		Name:         name,
		Email:        o.settings.ZoneEmail,
		AdminGroupID: sess.GroupID,
	})
	if err != nil {
		return err
	}

	zoneID := change.Zone.ID
	if role == reverseZone {
		sess.ReverseZoneID = zoneID
	} else {
		sess.ForwardZoneID = zoneID
	}
	if err := o.save(ctx, sess); err != nil {
		return err
	}

	if err := o.await(ctx, "zone_present", func(ctx context.Context) (bool, error) {
		_, err := o.api.GetZone(ctx, zoneID)
		if err == nil {
			return true, nil
		}
		return o.pending(err, "zone", zoneID)
	}); err != nil {
		return fmt.Errorf("zone %s: %w", name, err)
	}
	o.logger.Info().Str("zone_id", zoneID).Msgf("Zone %s is active", name)
	return nil
}

// pending turns an error from a status fetch into a poll result. Missing
// resources and error statuses mean "not yet"; transport failures end the
// wait.
func (o *Orchestrator) pending(err error, kind, id string) (bool, error) {
	if errors.Is(err, vinyldns.ErrNotFound) {
		return false, nil
	}
	var rce *vinyldns.RemoteCallError
	if errors.As(err, &rce) {
		o.logger.Warn().Err(err).Msgf("Status check for %s %s failed, retrying", kind, id)
		return false, nil
	}
	return false, err
}

// await runs cond on the waiter, counting each evaluation.
func (o *Orchestrator) await(ctx context.Context, target string, cond func(ctx context.Context) (bool, error)) error {
	attempt := 0
	outcome, err := o.waiter.Until(ctx, func(ctx context.Context) (bool, error) {
		attempt++
		o.metrics.PollEvaluated(target)
		ok, err := cond(ctx)
		o.logger.Debug().Str("target", target).Int("attempt", attempt).Bool("done", ok).Msg("Polled")
		return ok, err
	})
	if err != nil {
		return fmt.Errorf("waiting for %s (%s): %w", target, outcome, err)
	}
	return nil
}
