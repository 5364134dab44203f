package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseProvisionGroup       Phase = "provision_group"
	PhaseProvisionForwardZone Phase = "provision_forward_zone"
	PhaseProvisionReverseZone Phase = "provision_reverse_zone"
	PhaseAddRecords           Phase = "add_records"
	PhaseReplaceRecords       Phase = "replace_records"
	PhaseDeleteRecords        Phase = "delete_records"
	PhaseTeardown             Phase = "teardown"
	PhaseDone                 Phase = "done"
)

// Session owns the resources one run provisions. It is threaded through
// every phase and journaled so a crashed run can be cleaned up later.
type Session struct {
	ID              string
	GroupID         string
	GroupName       string
	ForwardZoneID   string
	ForwardZoneName string
	ReverseZoneID   string
	ReverseZoneName string
	Phase           Phase
	Created         time.Time
	Updated         time.Time
}

func New(forwardZone, reverseZone string) *Session {
	now := time.Now()
	return &Session{
		ID:              uuid.NewString(),
		ForwardZoneName: forwardZone,
		ReverseZoneName: reverseZone,
		Phase:           PhaseProvisionGroup,
		Created:         now,
		Updated:         now,
	}
}

// Provisioned reports whether any remote resource is held by the session.
func (s *Session) Provisioned() bool {
	return s.GroupID != "" || s.ForwardZoneID != "" || s.ReverseZoneID != ""
}

// Advance records the phase the session is entering.
func (s *Session) Advance(p Phase) {
	s.Phase = p
	s.Updated = time.Now()
}

func (s *Session) Render() string {
	return fmt.Sprintf("session %s (phase=%s, group=%s, forward=%s[%s], reverse=%s[%s], created=%s)",
		s.ID, s.Phase, s.GroupID, s.ForwardZoneName, s.ForwardZoneID, s.ReverseZoneName, s.ReverseZoneID,
		s.Created.Format("2006-01-02 15:04:05"))
}

// LockKey is the store lock a run holds while it owns the forward zone name.
func LockKey(forwardZone string) string {
	return "zone/" + forwardZone
}
