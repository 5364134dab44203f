package vinyldns

import (
	"fmt"
	"strings"

	"github.com/auto-dns/vinyldns-batch-sample/internal/domain"
)

type MemberID struct {
	ID string `json:"id"`
}

type CreateGroupRequest struct {
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Description string     `json:"description,omitempty"`
	Members     []MemberID `json:"members"`
	Admins      []MemberID `json:"admins"`
}

type Group struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Created     string     `json:"created,omitempty"`
	Members     []MemberID `json:"members"`
	Admins      []MemberID `json:"admins"`
}

type CreateZoneRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	AdminGroupID string `json:"adminGroupId"`
}

type Zone struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	AdminGroupID string `json:"adminGroupId"`
	Status       string `json:"status,omitempty"`
	Created      string `json:"created,omitempty"`
}

// ZoneChange is what the API returns for asynchronous zone mutations.
type ZoneChange struct {
	ID         string `json:"id"`
	Zone       Zone   `json:"zone"`
	ChangeType string `json:"changeType"`
	Status     string `json:"status"`
}

type zoneResponse struct {
	Zone Zone `json:"zone"`
}

// RecordData holds the type-specific payload of a record. Only the field
// matching the record type is set.
type RecordData struct {
	Address  string `json:"address,omitempty"`
	PTRDName string `json:"ptrdname,omitempty"`
	CName    string `json:"cname,omitempty"`
}

func (d RecordData) String() string {
	switch {
	case d.Address != "":
		return d.Address
	case d.PTRDName != "":
		return d.PTRDName
	case d.CName != "":
		return d.CName
	default:
		return ""
	}
}

func recordDataFor(kind domain.RecordKind, value string) (*RecordData, error) {
	switch kind {
	case domain.RecordA, domain.RecordAAAA:
		return &RecordData{Address: value}, nil
	case domain.RecordPTR:
		return &RecordData{PTRDName: value}, nil
	case domain.RecordCNAME:
		return &RecordData{CName: value}, nil
	default:
		return nil, fmt.Errorf("no record data mapping for type %s", kind)
	}
}

type ChangeInput struct {
	ChangeType string      `json:"changeType"`
	InputName  string      `json:"inputName"`
	Type       string      `json:"type"`
	TTL        int64       `json:"ttl,omitempty"`
	Record     *RecordData `json:"record,omitempty"`
}

func toChangeInput(c domain.Change) (ChangeInput, error) {
	in := ChangeInput{
		ChangeType: string(c.Kind),
		InputName:  c.InputName,
		Type:       string(c.Type),
	}
	if c.IsAdd() {
		data, err := recordDataFor(c.Type, c.Data)
		if err != nil {
			return ChangeInput{}, err
		}
		in.TTL = c.TTL
		in.Record = data
	}
	return in, nil
}

type createBatchRequest struct {
	Comments     string        `json:"comments,omitempty"`
	OwnerGroupID string        `json:"ownerGroupId,omitempty"`
	Changes      []ChangeInput `json:"changes"`
}

type BatchStatus string

const (
	BatchPending        BatchStatus = "Pending"
	BatchPendingReview  BatchStatus = "PendingReview"
	BatchScheduled      BatchStatus = "Scheduled"
	BatchComplete       BatchStatus = "Complete"
	BatchFailed         BatchStatus = "Failed"
	BatchPartialFailure BatchStatus = "PartialFailure"
	BatchCancelled      BatchStatus = "Cancelled"
	BatchRejected       BatchStatus = "Rejected"
)

// IsComplete reports successful completion of every change in the batch.
func (s BatchStatus) IsComplete() bool {
	return s == BatchComplete
}

// IsFailed reports a terminal status other than Complete.
func (s BatchStatus) IsFailed() bool {
	switch s {
	case BatchFailed, BatchPartialFailure, BatchCancelled, BatchRejected:
		return true
	default:
		return false
	}
}

type SingleChange struct {
	ID            string `json:"id"`
	ChangeType    string `json:"changeType"`
	InputName     string `json:"inputName"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	SystemMessage string `json:"systemMessage,omitempty"`
}

type BatchChange struct {
	ID               string         `json:"id"`
	UserName         string         `json:"userName,omitempty"`
	Comments         string         `json:"comments,omitempty"`
	CreatedTimestamp string         `json:"createdTimestamp,omitempty"`
	OwnerGroupID     string         `json:"ownerGroupId,omitempty"`
	Status           BatchStatus    `json:"status"`
	Changes          []SingleChange `json:"changes"`
}

// FailureMessages collects the system messages of changes that did not apply.
func (b BatchChange) FailureMessages() string {
	var msgs []string
	for _, c := range b.Changes {
		if c.SystemMessage != "" {
			msgs = append(msgs, fmt.Sprintf("%s %s: %s", c.Type, c.InputName, c.SystemMessage))
		}
	}
	return strings.Join(msgs, "; ")
}

type RecordSet struct {
	ID      string       `json:"id"`
	ZoneID  string       `json:"zoneId"`
	Name    string       `json:"name"`
	Type    string       `json:"type"`
	TTL     int64        `json:"ttl"`
	Status  string       `json:"status,omitempty"`
	Records []RecordData `json:"records"`
}

type listRecordSetsResponse struct {
	RecordSets []RecordSet `json:"recordSets"`
	StartFrom  string      `json:"startFrom,omitempty"`
	NextID     string      `json:"nextId,omitempty"`
	MaxItems   int         `json:"maxItems,omitempty"`
}
