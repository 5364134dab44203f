package vinyldns

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/rs/zerolog"

	"github.com/auto-dns/vinyldns-batch-sample/internal/batch"
)

const signingService = "VinylDNS"

// Config holds what the client needs to reach and authenticate against the API.
type Config struct {
	URL       string
	AccessKey string
	SecretKey string
	Region    string
	Timeout   time.Duration
	UserAgent string
}

// Observer is told about every completed HTTP exchange. status is zero when
// the request never got a response.
type Observer func(op string, status int, err error)

type Client struct {
	baseURL   string
	creds     aws.Credentials
	region    string
	userAgent string
	signer    *v4.Signer
	http      *http.Client
	observer  Observer
	logger    zerolog.Logger
	now       func() time.Time
}

func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("vinyldns: missing url")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("vinyldns: invalid url %q: %w", cfg.URL, err)
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("vinyldns: missing access key or secret key")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "vinyldns-batch-sample"
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		creds: aws.Credentials{
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
			Source:          "vinyldns-batch-sample",
		},
		region:    region,
		userAgent: userAgent,
		signer:    v4.NewSigner(),
		http:      &http.Client{Timeout: timeout},
		logger:    logger,
		now:       time.Now,
	}, nil
}

// WithObserver registers a hook called after every request.
func (c *Client) WithObserver(obs Observer) *Client {
	c.observer = obs
	return c
}

type response struct {
	status int
	body   []byte
}

func (r response) text() string {
	return strings.TrimSpace(string(r.body))
}

// do signs and executes one request. Non-2xx statuses are not errors here;
// each call decides which statuses it tolerates.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) (response, error) {
	resp, err := c.roundTrip(ctx, method, path, query, body)
	if c.observer != nil {
		c.observer(op, resp.status, err)
	}
	if err != nil {
		return resp, fmt.Errorf("vinyldns: %s: %w", op, err)
	}
	c.logger.Debug().Str("op", op).Str("method", method).Str("path", path).Int("status", resp.status).Msg("VinylDNS call finished")
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body any) (response, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("marshal request body: %w", err)
		}
		payload = data
	}

	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
	if err != nil {
		return response{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	sum := sha256.Sum256(payload)
	if err := c.signer.SignHTTP(ctx, c.creds, req, hex.EncodeToString(sum[:]), signingService, c.region, c.now()); err != nil {
		return response{}, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{status: resp.StatusCode}, fmt.Errorf("read response body: %w", err)
	}
	return response{status: resp.StatusCode, body: data}, nil
}

func decode(op string, r response, out any) error {
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("vinyldns: %s: decode response: %w", op, err)
	}
	return nil
}

func failed(r response) bool {
	return r.status > http.StatusAccepted
}

func (c *Client) CreateGroup(ctx context.Context, req CreateGroupRequest) (*Group, error) {
	const op = "create group"
	r, err := c.do(ctx, op, http.MethodPost, "/groups", nil, req)
	if err != nil {
		return nil, err
	}
	if failed(r) {
		return nil, &RemoteCallError{Op: op, StatusCode: r.status, Body: r.text()}
	}
	var group Group
	if err := decode(op, r, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	const op = "delete group"
	r, err := c.do(ctx, op, http.MethodDelete, "/groups/"+url.PathEscape(groupID), nil, nil)
	if err != nil {
		return err
	}
	if failed(r) {
		return &RemoteCallError{Op: op, StatusCode: r.status, Body: r.text()}
	}
	return nil
}

// CreateZone connects a zone. The zone is not queryable until the returned
// change has been processed.
func (c *Client) CreateZone(ctx context.Context, req CreateZoneRequest) (*ZoneChange, error) {
	const op = "create zone"
	r, err := c.do(ctx, op, http.MethodPost, "/zones", nil, req)
	if err != nil {
		return nil, err
	}
	if failed(r) {
		return nil, &RemoteCallError{Op: op, StatusCode: r.status, Body: r.text()}
	}
	var change ZoneChange
	if err := decode(op, r, &change); err != nil {
		return nil, err
	}
	if change.Zone.ID == "" {
		return nil, fmt.Errorf("vinyldns: %s: response carries no zone id", op)
	}
	return &change, nil
}

func (c *Client) GetZone(ctx context.Context, zoneID string) (*Zone, error) {
	const op = "get zone"
	r, err := c.do(ctx, op, http.MethodGet, "/zones/"+url.PathEscape(zoneID), nil, nil)
	if err != nil {
		return nil, err
	}
	if r.status == http.StatusNotFound {
		return nil, fmt.Errorf("zone %s: %w", zoneID, ErrNotFound)
	}
	if r.status != http.StatusOK {
		return nil, &RemoteCallError{Op: op, StatusCode: r.status, Body: r.text()}
	}
	var zr zoneResponse
	if err := decode(op, r, &zr); err != nil {
		return nil, err
	}
	return &zr.Zone, nil
}

// DeleteZone abandons a zone. A zone that is already gone is not an error.
func (c *Client) DeleteZone(ctx context.Context, zoneID string) error {
	const op = "delete zone"
	r, err := c.do(ctx, op, http.MethodDelete, "/zones/"+url.PathEscape(zoneID), nil, nil)
	if err != nil {
		return err
	}
	if failed(r) && r.status != http.StatusNotFound {
		return &RemoteCallError{Op: op, StatusCode: r.status, Body: r.text()}
	}
	return nil
}

// SubmitBatch sends a batch change. Acceptance does not mean the changes
// have been applied; poll GetBatchChange for that.
func (c *Client) SubmitBatch(ctx context.Context, req batch.Request) (*BatchChange, error) {
	const op = "submit batch"
	wire := createBatchRequest{
		Comments:     req.Comments,
		OwnerGroupID: req.OwnerGroupID,
		Changes:      make([]ChangeInput, 0, len(req.Changes)),
	}
	for _, change := range req.Changes {
		in, err := toChangeInput(change)
		if err != nil {
			return nil, fmt.Errorf("vinyldns: %s: %w", op, err)
		}
		wire.Changes = append(wire.Changes, in)
	}

	r, err := c.do(ctx, op, http.MethodPost, "/zones/batchrecordchanges", nil, wire)
	if err != nil {
		return nil, err
	}
	if failed(r) {
		return nil, &BatchRequestError{StatusCode: r.status, Body: r.text()}
	}
	var bc BatchChange
	if err := decode(op, r, &bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

func (c *Client) GetBatchChange(ctx context.Context, batchID string) (*BatchChange, error) {
	const op = "get batch change"
	r, err := c.do(ctx, op, http.MethodGet, "/zones/batchrecordchanges/"+url.PathEscape(batchID), nil, nil)
	if err != nil {
		return nil, err
	}
	if r.status == http.StatusNotFound {
		return nil, fmt.Errorf("batch change %s: %w", batchID, ErrNotFound)
	}
	if failed(r) {
		return nil, &RemoteCallError{Op: op, StatusCode: r.status, Body: r.text()}
	}
	var bc BatchChange
	if err := decode(op, r, &bc); err != nil {
		return nil, err
	}
	return &bc, nil
}

// ListRecordSets returns every record set in the zone whose name matches
// nameFilter, following pagination to the end.
func (c *Client) ListRecordSets(ctx context.Context, zoneID, nameFilter string) ([]RecordSet, error) {
	const op = "list record sets"
	var all []RecordSet
	startFrom := ""
	for {
		query := url.Values{}
		if nameFilter != "" {
			query.Set("recordNameFilter", nameFilter)
		}
		if startFrom != "" {
			query.Set("startFrom", startFrom)
		}
		r, err := c.do(ctx, op, http.MethodGet, "/zones/"+url.PathEscape(zoneID)+"/recordsets", query, nil)
		if err != nil {
			return nil, err
		}
		if r.status != http.StatusOK {
			return nil, &RemoteCallError{Op: op, StatusCode: r.status, Body: r.text()}
		}
		var page listRecordSetsResponse
		if err := decode(op, r, &page); err != nil {
			return nil, err
		}
		all = append(all, page.RecordSets...)
		if page.NextID == "" || page.NextID == startFrom {
			return all, nil
		}
		startFrom = page.NextID
	}
}
