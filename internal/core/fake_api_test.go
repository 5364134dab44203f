package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/auto-dns/vinyldns-batch-sample/internal/batch"
	"github.com/auto-dns/vinyldns-batch-sample/internal/domain"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

type fakeZone struct {
	name    string
	polls   int
	deleted bool
}

// fakeAPI simulates the asynchronous parts of the remote API: zones appear
// after a number of polls and batches apply their changes when submitted.
type fakeAPI struct {
	mu sync.Mutex

	calls   []string
	zones   map[string]*fakeZone
	records map[domain.Selector]string

	// zoneNotFoundPolls is how many status checks of a new zone answer 404.
	zoneNotFoundPolls int
	// batchPendingPolls is how many status checks of a batch report Pending.
	batchPendingPolls int
	finalStatus       vinyldns.BatchStatus
	submitErrAt       int
	submitErr         error
	createGroupErr    error
	deleteZoneErr     map[string]error
	// zonesLinger keeps deleted zones fetchable forever.
	zonesLinger bool
	getZoneHook       func(id string)

	submitted  []batch.Request
	batchPolls map[string]int
	nextID     int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		zones:         make(map[string]*fakeZone),
		records:       make(map[domain.Selector]string),
		finalStatus:   vinyldns.BatchComplete,
		deleteZoneErr: make(map[string]error),
		batchPolls:    make(map[string]int),
	}
}

func (f *fakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeAPI) CreateGroup(_ context.Context, req vinyldns.CreateGroupRequest) (*vinyldns.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateGroup " + req.Name)
	if f.createGroupErr != nil {
		return nil, f.createGroupErr
	}
	return &vinyldns.Group{ID: "group-1", Name: req.Name, Email: req.Email, Members: req.Members, Admins: req.Admins}, nil
}

func (f *fakeAPI) DeleteGroup(_ context.Context, groupID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteGroup " + groupID)
	return nil
}

func (f *fakeAPI) CreateZone(_ context.Context, req vinyldns.CreateZoneRequest) (*vinyldns.ZoneChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateZone " + req.Name)
	id := f.id("zone")
	f.zones[id] = &fakeZone{name: req.Name}
	return &vinyldns.ZoneChange{Zone: vinyldns.Zone{ID: id, Name: req.Name, AdminGroupID: req.AdminGroupID}, Status: "Pending"}, nil
}

func (f *fakeAPI) GetZone(_ context.Context, zoneID string) (*vinyldns.Zone, error) {
	f.mu.Lock()
	hook := f.getZoneHook
	f.record("GetZone " + zoneID)
	z, ok := f.zones[zoneID]
	var out *vinyldns.Zone
	var err error
	switch {
	case !ok || (z.deleted && !f.zonesLinger):
		err = fmt.Errorf("zone %s: %w", zoneID, vinyldns.ErrNotFound)
	case z.deleted:
		out = &vinyldns.Zone{ID: zoneID, Name: z.name, Status: "Deleting"}
	default:
		z.polls++
		if z.polls <= f.zoneNotFoundPolls {
			err = fmt.Errorf("zone %s: %w", zoneID, vinyldns.ErrNotFound)
		} else {
			out = &vinyldns.Zone{ID: zoneID, Name: z.name, Status: "Active"}
		}
	}
	f.mu.Unlock()
	if hook != nil {
		hook(zoneID)
	}
	return out, err
}

func (f *fakeAPI) DeleteZone(_ context.Context, zoneID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteZone " + zoneID)
	if err := f.deleteZoneErr[zoneID]; err != nil {
		return err
	}
	if z, ok := f.zones[zoneID]; ok {
		z.deleted = true
	}
	return nil
}

func (f *fakeAPI) SubmitBatch(_ context.Context, req batch.Request) (*vinyldns.BatchChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SubmitBatch")
	f.submitted = append(f.submitted, req)
	if f.submitErrAt == len(f.submitted) {
		return nil, f.submitErr
	}
	for _, c := range req.Changes {
		if c.IsAdd() {
			f.records[c.Selector()] = c.Data
		} else {
			delete(f.records, c.Selector())
		}
	}
	return &vinyldns.BatchChange{ID: f.id("batch"), Status: vinyldns.BatchPending}, nil
}

func (f *fakeAPI) GetBatchChange(_ context.Context, batchID string) (*vinyldns.BatchChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetBatchChange " + batchID)
	f.batchPolls[batchID]++
	status := f.finalStatus
	if f.batchPolls[batchID] <= f.batchPendingPolls {
		status = vinyldns.BatchPending
	}
	return &vinyldns.BatchChange{ID: batchID, Status: status}, nil
}

func (f *fakeAPI) ListRecordSets(_ context.Context, zoneID, nameFilter string) ([]vinyldns.RecordSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListRecordSets " + zoneID)
	var sets []vinyldns.RecordSet
	for sel, data := range f.records {
		if sel.Type == domain.RecordPTR || !strings.HasPrefix(sel.Name, nameFilter) {
			continue
		}
		sets = append(sets, vinyldns.RecordSet{
			ZoneID:  zoneID,
			Name:    sel.Name,
			Type:    string(sel.Type),
			TTL:     domain.DefaultTTL,
			Records: []vinyldns.RecordData{{Address: data}},
		})
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })
	return sets, nil
}

func (f *fakeAPI) callsWithPrefix(prefixes ...string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		for _, p := range prefixes {
			if strings.HasPrefix(c, p) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

var errInjected = errors.New("injected failure")
