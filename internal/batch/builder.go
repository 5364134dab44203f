package batch

import (
	"errors"

	"github.com/auto-dns/vinyldns-batch-sample/internal/domain"
)

var (
	ErrMissingOwnerGroup = errors.New("batch request has no owner group")
	ErrAlreadyBuilt      = errors.New("batch builder already used")
)

// Request is a batch submission. Changes are applied by the remote side in
// the order they appear.
type Request struct {
	Changes      []domain.Change
	OwnerGroupID string
	Comments     string
}

// Builder accumulates changes for a single Request. Insertion order is kept.
type Builder struct {
	ownerGroupID string
	comments     string
	changes      []domain.Change
	built        bool
}

func NewBuilder(ownerGroupID string) *Builder {
	return &Builder{ownerGroupID: ownerGroupID}
}

func (b *Builder) AddOne(item domain.RecordItem) *Builder {
	b.changes = append(b.changes, domain.AddChanges(item)...)
	return b
}

func (b *Builder) DeleteOne(item domain.RecordItem) *Builder {
	b.changes = append(b.changes, domain.DeleteChanges(item)...)
	return b
}

// ReplaceOne retires the old item before introducing the new one so no two
// forward records ever share a reverse pointer inside the batch.
func (b *Builder) ReplaceOne(old, replacement domain.RecordItem) *Builder {
	return b.DeleteOne(old).AddOne(replacement)
}

func (b *Builder) AddMany(items ...domain.RecordItem) *Builder {
	for _, item := range items {
		b.AddOne(item)
	}
	return b
}

func (b *Builder) DeleteMany(items ...domain.RecordItem) *Builder {
	for _, item := range items {
		b.DeleteOne(item)
	}
	return b
}

func (b *Builder) WithComments(comments string) *Builder {
	b.comments = comments
	return b
}

// Len reports how many primitive changes have been collected so far.
func (b *Builder) Len() int {
	return len(b.changes)
}

// Build returns the accumulated request. An empty change list is allowed.
func (b *Builder) Build() (Request, error) {
	if b.built {
		return Request{}, ErrAlreadyBuilt
	}
	if b.ownerGroupID == "" {
		return Request{}, ErrMissingOwnerGroup
	}
	b.built = true

	changes := make([]domain.Change, len(b.changes))
	copy(changes, b.changes)
	return Request{
		Changes:      changes,
		OwnerGroupID: b.ownerGroupID,
		Comments:     b.comments,
	}, nil
}
