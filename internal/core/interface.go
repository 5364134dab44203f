package core

import (
	"context"
	"time"

	"github.com/auto-dns/vinyldns-batch-sample/internal/batch"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

type dnsAPI interface {
	CreateGroup(ctx context.Context, req vinyldns.CreateGroupRequest) (*vinyldns.Group, error)
	DeleteGroup(ctx context.Context, groupID string) error
	CreateZone(ctx context.Context, req vinyldns.CreateZoneRequest) (*vinyldns.ZoneChange, error)
	GetZone(ctx context.Context, zoneID string) (*vinyldns.Zone, error)
	DeleteZone(ctx context.Context, zoneID string) error
	SubmitBatch(ctx context.Context, req batch.Request) (*vinyldns.BatchChange, error)
	GetBatchChange(ctx context.Context, batchID string) (*vinyldns.BatchChange, error)
	ListRecordSets(ctx context.Context, zoneID, nameFilter string) ([]vinyldns.RecordSet, error)
}

type recorder interface {
	PollEvaluated(target string)
	BatchSubmitted(phase string)
	ObservePhase(phase string, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) PollEvaluated(string)                      {}
func (nopRecorder) BatchSubmitted(string)                     {}
func (nopRecorder) ObservePhase(string, time.Duration, error) {}
