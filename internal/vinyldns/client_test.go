package vinyldns

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/auto-dns/vinyldns-batch-sample/internal/batch"
	"github.com/auto-dns/vinyldns-batch-sample/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		URL:       srv.URL,
		AccessKey: "testUserAccessKey",
		SecretKey: "testUserSecretKey",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNewClient_MissingSettings(t *testing.T) {
	if _, err := NewClient(Config{AccessKey: "a", SecretKey: "b"}, zerolog.Nop()); err == nil {
		t.Error("expected error for missing url")
	}
	if _, err := NewClient(Config{URL: "http://localhost:9000"}, zerolog.Nop()); err == nil {
		t.Error("expected error for missing keys")
	}
}

func TestCreateGroup_SignsAndDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/groups" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=testUserAccessKey/") || !strings.Contains(auth, "/VinylDNS/aws4_request") {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if r.Header.Get("X-Amz-Date") == "" {
			t.Error("expected X-Amz-Date header")
		}

		var req CreateGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if req.Name != "ok" || len(req.Members) != 1 || req.Admins[0].ID != "ok" {
			t.Errorf("unexpected group request %+v", req)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"group-1","name":"ok","email":"test@test.com","members":[{"id":"ok"}],"admins":[{"id":"ok"}]}`))
	})

	g, err := c.CreateGroup(context.Background(), CreateGroupRequest{
		Name:    "ok",
		Email:   "test@test.com",
		Members: []MemberID{{ID: "ok"}},
		Admins:  []MemberID{{ID: "ok"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ID != "group-1" {
		t.Errorf("expected group-1, got %q", g.ID)
	}
}

func TestCreateGroup_RemoteCallError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("Group with name ok already exists"))
	})

	_, err := c.CreateGroup(context.Background(), CreateGroupRequest{Name: "ok"})
	var rce *RemoteCallError
	if !errors.As(err, &rce) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
	if rce.StatusCode != http.StatusConflict || !strings.Contains(rce.Body, "already exists") {
		t.Errorf("unexpected error contents %+v", rce)
	}
}

func TestGetZone_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetZone(context.Background(), "zone-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndGetZone(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/zones":
			var req CreateZoneRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.AdminGroupID != "group-1" {
				t.Errorf("expected admin group group-1, got %q", req.AdminGroupID)
			}
			w.WriteHeader(http.StatusAccepted)
			w.Write([]byte(`{"id":"chg-1","zone":{"id":"zone-1","name":"ok."},"changeType":"Create","status":"Pending"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/zones/zone-1":
			w.Write([]byte(`{"zone":{"id":"zone-1","name":"ok.","status":"Active"}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	change, err := c.CreateZone(context.Background(), CreateZoneRequest{Name: "ok.", Email: "test@test.com", AdminGroupID: "group-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if change.Zone.ID != "zone-1" {
		t.Fatalf("expected zone-1, got %q", change.Zone.ID)
	}
	zone, err := c.GetZone(context.Background(), change.Zone.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if zone.Status != "Active" {
		t.Errorf("expected Active, got %q", zone.Status)
	}
}

func TestDeleteZone_ToleratesNotFound(t *testing.T) {
	status := http.StatusNotFound
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	if err := c.DeleteZone(context.Background(), "zone-1"); err != nil {
		t.Fatalf("expected 404 to be tolerated, got %v", err)
	}
	status = http.StatusInternalServerError
	var rce *RemoteCallError
	if err := c.DeleteZone(context.Background(), "zone-1"); !errors.As(err, &rce) {
		t.Fatalf("expected RemoteCallError, got %v", err)
	}
}

func TestSubmitBatch_WireShape(t *testing.T) {
	item, err := domain.NewAPTR("test-java-1.ok.", "192.0.2.110")
	if err != nil {
		t.Fatalf("build item: %v", err)
	}
	req, err := batch.NewBuilder("group-1").AddOne(item).DeleteOne(item).WithComments("sample").Build()
	if err != nil {
		t.Fatalf("build request: %v", err)
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/zones/batchrecordchanges" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Comments     string                   `json:"comments"`
			OwnerGroupID string                   `json:"ownerGroupId"`
			Changes      []map[string]interface{} `json:"changes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
			return
		}
		if body.OwnerGroupID != "group-1" || body.Comments != "sample" {
			t.Errorf("unexpected batch header %+v", body)
		}
		if len(body.Changes) != 4 {
			t.Errorf("expected 4 changes, got %d", len(body.Changes))
			return
		}
		a := body.Changes[0]
		if a["changeType"] != "Add" || a["type"] != "A" || a["ttl"].(float64) != 7200 {
			t.Errorf("unexpected A change %v", a)
		}
		if rec := a["record"].(map[string]interface{}); rec["address"] != "192.0.2.110" {
			t.Errorf("unexpected A record data %v", rec)
		}
		ptr := body.Changes[1]
		if ptr["inputName"] != "110.2.0.192.in-addr.arpa." || ptr["record"].(map[string]interface{})["ptrdname"] != "test-java-1.ok." {
			t.Errorf("unexpected PTR change %v", ptr)
		}
		del := body.Changes[2]
		if del["changeType"] != "DeleteRecordSet" {
			t.Errorf("unexpected delete change %v", del)
		}
		if _, ok := del["record"]; ok {
			t.Errorf("delete change must not carry record data: %v", del)
		}
		if _, ok := del["ttl"]; ok {
			t.Errorf("delete change must not carry a ttl: %v", del)
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"id":"batch-1","status":"PendingProcessing","changes":[]}`))
	})

	bc, err := c.SubmitBatch(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bc.ID != "batch-1" {
		t.Errorf("expected batch-1, got %q", bc.ID)
	}
}

func TestSubmitBatch_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`[{"changeType":"Add","errors":["Zone Discovery Failed"]}]`))
	})

	_, err := c.SubmitBatch(context.Background(), batch.Request{OwnerGroupID: "group-1"})
	var bre *BatchRequestError
	if !errors.As(err, &bre) {
		t.Fatalf("expected BatchRequestError, got %v", err)
	}
	if !strings.Contains(bre.Body, "Zone Discovery Failed") {
		t.Errorf("expected body to be kept, got %q", bre.Body)
	}
}

func TestGetBatchChange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/zones/batchrecordchanges/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"id":"batch-1","status":"PartialFailure","changes":[{"inputName":"a.ok.","type":"A","status":"Failed","systemMessage":"record exists"}]}`))
	})

	bc, err := c.GetBatchChange(context.Background(), "batch-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bc.Status.IsFailed() || bc.Status.IsComplete() {
		t.Errorf("expected failed status, got %s", bc.Status)
	}
	if !strings.Contains(bc.FailureMessages(), "record exists") {
		t.Errorf("unexpected failure messages %q", bc.FailureMessages())
	}
	if _, err := c.GetBatchChange(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRecordSets_FollowsPages(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("recordNameFilter") != "test-java-" {
			t.Errorf("expected name filter, got %q", r.URL.RawQuery)
		}
		switch r.URL.Query().Get("startFrom") {
		case "":
			w.Write([]byte(`{"recordSets":[{"name":"test-java-1","type":"A","ttl":7200,"records":[{"address":"192.0.2.110"}]}],"nextId":"page-2"}`))
		case "page-2":
			w.Write([]byte(`{"recordSets":[{"name":"test-java-2","type":"A","ttl":7200,"records":[{"address":"192.0.2.111"}]}]}`))
		default:
			t.Errorf("unexpected startFrom %q", r.URL.Query().Get("startFrom"))
		}
	})

	sets, err := c.ListRecordSets(context.Background(), "zone-1", "test-java-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || len(sets) != 2 {
		t.Fatalf("expected 2 pages and 2 record sets, got %d and %d", calls, len(sets))
	}
	if sets[1].Records[0].String() != "192.0.2.111" {
		t.Errorf("unexpected record data %+v", sets[1].Records)
	}
}

func TestObserverSeesEveryCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	var seen []string
	c.WithObserver(func(op string, status int, err error) {
		if status != http.StatusNotFound || err != nil {
			t.Errorf("unexpected observation %s %d %v", op, status, err)
		}
		seen = append(seen, op)
	})

	c.GetZone(context.Background(), "zone-1")
	c.DeleteZone(context.Background(), "zone-1")
	if len(seen) != 2 || seen[0] != "get zone" || seen[1] != "delete zone" {
		t.Errorf("unexpected observed ops %v", seen)
	}
}
