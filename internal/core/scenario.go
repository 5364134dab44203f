package core

import (
	"fmt"

	"github.com/auto-dns/vinyldns-batch-sample/internal/config"
	"github.com/auto-dns/vinyldns-batch-sample/internal/domain"
)

// Scenario is the record set pushed through the add, replace and delete
// batches. Replacements[i] replaces Originals[i].
type Scenario struct {
	Originals        []domain.RecordItem
	Replacements     []domain.RecordItem
	Comments         string
	RecordNameFilter string
}

func NewScenario(cfg config.ScenarioConfig) (Scenario, error) {
	sc := Scenario{
		Comments:         cfg.Comments,
		RecordNameFilter: cfg.RecordNameFilter,
	}
	for i, r := range cfg.Records {
		original, err := domain.NewFromString(r.Kind, r.FQDN, r.Value)
		if err != nil {
			return Scenario{}, fmt.Errorf("scenario record %d: %w", i, err)
		}
		replacement, err := domain.NewFromString(r.Kind, r.FQDN, r.Replacement)
		if err != nil {
			return Scenario{}, fmt.Errorf("scenario record %d replacement: %w", i, err)
		}
		sc.Originals = append(sc.Originals, original)
		sc.Replacements = append(sc.Replacements, replacement)
	}
	return sc, nil
}
