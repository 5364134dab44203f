package session

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/auto-dns/vinyldns-batch-sample/internal/config"
)

type etcdClient interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
	Grant(ctx context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error)
	Txn(ctx context.Context) clientv3.Txn
	Revoke(ctx context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error)
	KeepAlive(ctx context.Context, id clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error)
	Close() error
}

// EtcdStore journals sessions in etcd so they outlive the process, and uses
// leased keys as a lock shared by every run pointed at the same cluster.
type EtcdStore struct {
	client   etcdClient
	cfg      *config.EtcdConfig
	hostname string
	logger   zerolog.Logger
}

func NewEtcdStore(client etcdClient, cfg *config.EtcdConfig, hostname string, logger zerolog.Logger) *EtcdStore {
	return &EtcdStore{
		client:   client,
		cfg:      cfg,
		hostname: hostname,
		logger:   logger,
	}
}

func (es *EtcdStore) Save(ctx context.Context, s *Session) error {
	value, err := marshalEtcdValue(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if _, err := es.client.Put(ctx, sessionKey(es.cfg.PathPrefix, s.ID), value); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (es *EtcdStore) Remove(ctx context.Context, id string) error {
	key := sessionKey(es.cfg.PathPrefix, id)
	if _, err := es.client.Delete(ctx, key); err != nil {
		es.logger.Warn().Err(err).Msgf("[etcd_store] Failed to delete key %s", key)
		return err
	}
	es.logger.Debug().Msgf("[etcd_store] Deleted key %s", key)
	return nil
}

// List returns every journaled session under the configured prefix, oldest first.
func (es *EtcdStore) List(ctx context.Context) ([]*Session, error) {
	prefix := sessionsPrefix(es.cfg.PathPrefix)
	resp, err := es.client.Get(ctx, prefix, clientv3.WithPrefix())
	if err != nil {
		return nil, err
	}
	var sessions []*Session
	for _, kv := range resp.Kvs {
		keyStr := string(kv.Key)
		s, err := unmarshalEtcdValue(keyStr, string(kv.Value), es.cfg.PathPrefix)
		if err != nil {
			es.logger.Error().Err(err).Msgf("[etcd_store] Failed to parse key: %s", keyStr)
			continue
		}
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Created.Before(sessions[j].Created) })
	return sessions, nil
}

// LockTransaction takes a leased lock on every key, runs fn, and releases
// the locks in reverse order whatever fn returns.
func (es *EtcdStore) LockTransaction(ctx context.Context, keys []string, fn func() error) error {
	var leases []heldLease
	defer func() {
		for i := len(leases) - 1; i >= 0; i-- {
			es.release(leases[i])
		}
	}()

	for _, key := range keys {
		held, err := es.acquire(ctx, key)
		if err != nil {
			return err
		}
		leases = append(leases, held)
	}

	return fn()
}

func (es *EtcdStore) acquire(ctx context.Context, key string) (heldLease, error) {
	lk := lockKey(es.cfg.PathPrefix, key)
	leaseResp, err := es.client.Grant(ctx, int64(es.cfg.LockTTL))
	if err != nil {
		return heldLease{}, fmt.Errorf("failed to create lease: %w", err)
	}

	deadline := time.Now().Add(config.Seconds(es.cfg.LockTimeout))
	for {
		txnResp, err := es.client.Txn(ctx).
			If(clientv3.Compare(clientv3.CreateRevision(lk), "=", 0)).
			Then(clientv3.OpPut(lk, es.hostname, clientv3.WithLease(leaseResp.ID))).
			Commit()
		if err != nil {
			es.revoke(leaseResp.ID, lk)
			return heldLease{}, err
		}
		if txnResp.Succeeded {
			es.logger.Debug().Msgf("[etcd_store] Acquired lock %s", lk)
			return es.keepAlive(heldLease{lockKey: lk, lease: leaseResp.ID})
		}
		if !time.Now().Before(deadline) {
			es.revoke(leaseResp.ID, lk)
			return heldLease{}, fmt.Errorf("failed to acquire lock on %s", key)
		}
		select {
		case <-ctx.Done():
			es.revoke(leaseResp.ID, lk)
			return heldLease{}, ctx.Err()
		case <-time.After(config.Seconds(es.cfg.LockRetryInterval)):
		}
	}
}

// keepAlive refreshes the lease until the lock is released, since a run
// holds its lock far longer than the lease TTL.
func (es *EtcdStore) keepAlive(l heldLease) (heldLease, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := es.client.KeepAlive(ctx, l.lease)
	if err != nil {
		cancel()
		es.release(l)
		return heldLease{}, fmt.Errorf("failed to keep lease for %s alive: %w", l.lockKey, err)
	}
	go func() {
		for range ch {
		}
	}()
	l.stop = cancel
	return l, nil
}

// release runs on a fresh context so locks are freed even after cancellation.
func (es *EtcdStore) release(l heldLease) {
	if l.stop != nil {
		l.stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := es.client.Delete(ctx, l.lockKey); err != nil {
		es.logger.Warn().Err(err).Msgf("failed to delete lock key %s", l.lockKey)
	}
	if _, err := es.client.Revoke(ctx, l.lease); err != nil {
		es.logger.Warn().Err(err).Msgf("failed to revoke lease for %s", l.lockKey)
	}
}

func (es *EtcdStore) revoke(id clientv3.LeaseID, lk string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := es.client.Revoke(ctx, id); err != nil {
		es.logger.Warn().Err(err).Msgf("failed to revoke unused lease for %s", lk)
	}
}

func (es *EtcdStore) Durable() bool {
	return true
}

func (es *EtcdStore) Close() error {
	return es.client.Close()
}
