package domain

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

// RecordItem is one logical DNS entity. The set of variants is closed:
// APTR, AAAAPTR and CNAME.
type RecordItem interface {
	isRecordItem()
	FQDN() string
	Render() string
}

// APTR is an A record paired with the PTR that points back at it.
type APTR struct {
	Name    string
	Address netip.Addr
}

// AAAAPTR is an AAAA record paired with its ip6.arpa PTR.
type AAAAPTR struct {
	Name    string
	Address netip.Addr
}

// CNAME aliases Name to Target.
type CNAME struct {
	Name   string
	Target string
}

func (APTR) isRecordItem()    {}
func (AAAAPTR) isRecordItem() {}
func (CNAME) isRecordItem()   {}

func (r APTR) FQDN() string    { return r.Name }
func (r AAAAPTR) FQDN() string { return r.Name }
func (r CNAME) FQDN() string   { return r.Name }

func (r APTR) Render() string {
	return fmt.Sprintf("[A+PTR] %s -> %s", r.Name, r.Address)
}

func (r AAAAPTR) Render() string {
	return fmt.Sprintf("[AAAA+PTR] %s -> %s", r.Name, r.Address)
}

func (r CNAME) Render() string {
	return fmt.Sprintf("[CNAME] %s -> %s", r.Name, r.Target)
}

func NewAPTR(fqdn, ipv4 string) (APTR, error) {
	name, err := normalizeName("fqdn", fqdn)
	if err != nil {
		return APTR{}, err
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ipv4))
	if err != nil || !addr.Unmap().Is4() {
		return APTR{}, NewInvalidRecordInputError("address", ipv4, "not an IPv4 address")
	}
	return APTR{Name: name, Address: addr.Unmap()}, nil
}

func NewAAAAPTR(fqdn, ipv6 string) (AAAAPTR, error) {
	name, err := normalizeName("fqdn", fqdn)
	if err != nil {
		return AAAAPTR{}, err
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ipv6))
	if err != nil || !addr.Is6() || addr.Is4In6() {
		return AAAAPTR{}, NewInvalidRecordInputError("address", ipv6, "not an IPv6 address")
	}
	if addr.Zone() != "" {
		return AAAAPTR{}, NewInvalidRecordInputError("address", ipv6, "zoned addresses have no reverse name")
	}
	return AAAAPTR{Name: name, Address: addr}, nil
}

func NewCNAME(fqdn, target string) (CNAME, error) {
	name, err := normalizeName("fqdn", fqdn)
	if err != nil {
		return CNAME{}, err
	}
	canonical, err := normalizeName("target", target)
	if err != nil {
		return CNAME{}, err
	}
	if strings.EqualFold(name, canonical) {
		return CNAME{}, NewInvalidRecordInputError("target", target, "alias points at itself")
	}
	return CNAME{Name: name, Target: canonical}, nil
}

// AddChanges decomposes an item into the primitive adds that create it.
func AddChanges(item RecordItem) []Change {
	switch r := item.(type) {
	case APTR:
		return []Change{
			addChange(r.Name, RecordA, r.Address.String()),
			addChange(reverseName(r.Address), RecordPTR, r.Name),
		}
	case AAAAPTR:
		return []Change{
			addChange(r.Name, RecordAAAA, r.Address.String()),
			addChange(reverseName(r.Address), RecordPTR, r.Name),
		}
	case CNAME:
		return []Change{
			addChange(r.Name, RecordCNAME, r.Target),
		}
	default:
		panic(fmt.Sprintf("domain: unknown record item %T", item))
	}
}

// DeleteChanges selects exactly the record sets AddChanges creates.
func DeleteChanges(item RecordItem) []Change {
	switch r := item.(type) {
	case APTR:
		return []Change{
			deleteChange(r.Name, RecordA),
			deleteChange(reverseName(r.Address), RecordPTR),
		}
	case AAAAPTR:
		return []Change{
			deleteChange(r.Name, RecordAAAA),
			deleteChange(reverseName(r.Address), RecordPTR),
		}
	case CNAME:
		return []Change{
			deleteChange(r.Name, RecordCNAME),
		}
	default:
		panic(fmt.Sprintf("domain: unknown record item %T", item))
	}
}

// reverseName returns the in-addr.arpa or ip6.arpa name for an address. The
// constructors reject zoned addresses, so ReverseAddr always accepts it.
func reverseName(addr netip.Addr) string {
	name, err := dns.ReverseAddr(addr.WithZone("").String())
	if err != nil {
		panic(fmt.Sprintf("domain: reverse name for %s: %v", addr, err))
	}
	return name
}

func normalizeName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || name == "." {
		return "", NewInvalidRecordInputError(field, raw, "empty name")
	}
	if _, ok := dns.IsDomainName(name); !ok {
		return "", NewInvalidRecordInputError(field, raw, "not a valid domain name")
	}
	if strings.ContainsAny(name, " \t*@") {
		return "", NewInvalidRecordInputError(field, raw, "illegal characters in name")
	}
	return dns.Fqdn(strings.ToLower(name)), nil
}
