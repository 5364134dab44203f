package session

import (
	"encoding/json"
	"fmt"
	"time"
)

type etcdSession struct {
	GroupID         string    `json:"group_id,omitempty"`
	GroupName       string    `json:"group_name,omitempty"`
	ForwardZoneID   string    `json:"forward_zone_id,omitempty"`
	ForwardZoneName string    `json:"forward_zone_name"`
	ReverseZoneID   string    `json:"reverse_zone_id,omitempty"`
	ReverseZoneName string    `json:"reverse_zone_name"`
	Phase           Phase     `json:"phase"`
	Created         time.Time `json:"created"`
	Updated         time.Time `json:"updated"`
}

func marshalEtcdValue(s *Session) (string, error) {
	wire := etcdSession{
		GroupID:         s.GroupID,
		GroupName:       s.GroupName,
		ForwardZoneID:   s.ForwardZoneID,
		ForwardZoneName: s.ForwardZoneName,
		ReverseZoneID:   s.ReverseZoneID,
		ReverseZoneName: s.ReverseZoneName,
		Phase:           s.Phase,
		Created:         s.Created,
		Updated:         s.Updated,
	}
	b, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalEtcdValue(key, raw, prefix string) (*Session, error) {
	id := idFromKey(prefix, key)
	if id == "" || id == key {
		return nil, fmt.Errorf("key %s is not a session key", key)
	}

	var wire etcdSession
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode etcd value: %w", err)
	}

	return &Session{
		ID:              id,
		GroupID:         wire.GroupID,
		GroupName:       wire.GroupName,
		ForwardZoneID:   wire.ForwardZoneID,
		ForwardZoneName: wire.ForwardZoneName,
		ReverseZoneID:   wire.ReverseZoneID,
		ReverseZoneName: wire.ReverseZoneName,
		Phase:           wire.Phase,
		Created:         wire.Created,
		Updated:         wire.Updated,
	}, nil
}
