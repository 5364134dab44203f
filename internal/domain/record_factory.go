package domain

import (
	"fmt"
	"strings"
)

func ParseKind(s string) (RecordKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return RecordA, nil
	case "AAAA":
		return RecordAAAA, nil
	case "CNAME":
		return RecordCNAME, nil
	case "PTR":
		return RecordPTR, nil
	default:
		return "", fmt.Errorf("unsupported record kind %q", s)
	}
}

// NewFromKind builds the item that owns records of the given forward kind.
// A and AAAA always carry their PTR partner; PTR cannot be requested directly.
func NewFromKind(kind RecordKind, fqdn, value string) (RecordItem, error) {
	switch kind {
	case RecordA:
		return NewAPTR(fqdn, value)
	case RecordAAAA:
		return NewAAAAPTR(fqdn, value)
	case RecordCNAME:
		return NewCNAME(fqdn, value)
	default:
		return nil, NewInvalidRecordInputError("kind", string(kind), "no record item for this kind")
	}
}

// Handy for callers holding a raw string
func NewFromString(kind, fqdn, value string) (RecordItem, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, NewInvalidRecordInputError("kind", kind, "unsupported record kind")
	}
	return NewFromKind(k, fqdn, value)
}
