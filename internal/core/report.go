package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/auto-dns/vinyldns-batch-sample/internal/domain"
	"github.com/auto-dns/vinyldns-batch-sample/internal/session"
	"github.com/auto-dns/vinyldns-batch-sample/internal/util"
	"github.com/auto-dns/vinyldns-batch-sample/internal/vinyldns"
)

// report prints the forward zone's record sets matching filter. Sets of a
// kind the run does not manage, like the apex SOA and NS, are left out.
func (o *Orchestrator) report(ctx context.Context, sess *session.Session, filter string) error {
	sets, err := o.api.ListRecordSets(ctx, sess.ForwardZoneID, filter)
	if err != nil {
		return err
	}

	sets = util.Filter(sets, func(rs vinyldns.RecordSet) bool {
		_, err := domain.ParseKind(rs.Type)
		return err == nil
	})

	fmt.Fprintf(o.out, "Record sets in %s matching %q after %s:\n", sess.ForwardZoneName, filter, sess.Phase)
	table := tablewriter.NewWriter(o.out)
	table.SetHeader([]string{"Name", "Type", "TTL", "Data"})
	table.SetAutoWrapText(false)
	for _, rs := range sets {
		table.Append([]string{
			rs.Name,
			rs.Type,
			strconv.FormatInt(rs.TTL, 10),
			strings.Join(util.Map(rs.Records, vinyldns.RecordData.String), ", "),
		})
	}
	table.Render()
	return nil
}
