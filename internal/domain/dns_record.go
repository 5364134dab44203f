package domain

import (
	"fmt"
)

type RecordKind string

const (
	RecordA     RecordKind = "A"
	RecordAAAA  RecordKind = "AAAA"
	RecordCNAME RecordKind = "CNAME"
	RecordPTR   RecordKind = "PTR"
)

// DefaultTTL is the time-to-live attached to every record an item adds.
const DefaultTTL int64 = 7200

type ChangeKind string

const (
	ChangeAdd             ChangeKind = "Add"
	ChangeDeleteRecordSet ChangeKind = "DeleteRecordSet"
)

// Change is a single primitive operation inside a batch. Deletes select a
// record set by name and type only, so TTL and Data are left empty.
type Change struct {
	Kind      ChangeKind
	InputName string
	Type      RecordKind
	TTL       int64
	Data      string
}

// Selector identifies the record set a change touches.
type Selector struct {
	Name string
	Type RecordKind
}

func addChange(name string, kind RecordKind, data string) Change {
	return Change{
		Kind:      ChangeAdd,
		InputName: name,
		Type:      kind,
		TTL:       DefaultTTL,
		Data:      data,
	}
}

func deleteChange(name string, kind RecordKind) Change {
	return Change{
		Kind:      ChangeDeleteRecordSet,
		InputName: name,
		Type:      kind,
	}
}

func (c Change) Selector() Selector {
	return Selector{Name: c.InputName, Type: c.Type}
}

func (c Change) IsAdd() bool    { return c.Kind == ChangeAdd }
func (c Change) IsDelete() bool { return c.Kind == ChangeDeleteRecordSet }

func (c Change) Render() string {
	if c.IsDelete() {
		return fmt.Sprintf("%s [%s] %s", c.Kind, c.Type, c.InputName)
	}
	return fmt.Sprintf("%s [%s] %s -> %s (ttl=%d)", c.Kind, c.Type, c.InputName, c.Data, c.TTL)
}
