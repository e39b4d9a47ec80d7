// Package seed provides the initial fan profile and the reward and contest
// catalogs.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aimd54/fan-ledger/internal/ledger"
	"github.com/aimd54/fan-ledger/internal/models"
)

//go:embed seed.yaml
var defaultSeed []byte

// Data is a complete seed document.
type Data struct {
	Fan      models.FanProfile `yaml:"fan"`
	Rewards  []models.Reward   `yaml:"rewards"`
	Contests []models.Contest  `yaml:"contests"`
}

// Load parses the embedded seed document.
func Load() (*Data, error) {
	return Parse(defaultSeed)
}

// LoadFile parses a seed document from path.
func LoadFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes a seed document and normalizes it: history entries get the
// fan id and increasing sequence numbers, and the fan's tier and score are
// re-derived from total points.
func Parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	if d.Fan.ID == 0 {
		return nil, fmt.Errorf("seed fan id is required")
	}
	if d.Fan.TotalPoints < 0 || d.Fan.TotalPoints > ledger.MaxTotalPoints {
		return nil, fmt.Errorf("seed total points out of range: %d", d.Fan.TotalPoints)
	}

	n := len(d.Fan.PointsHistory)
	for i := range d.Fan.PointsHistory {
		t := &d.Fan.PointsHistory[i]
		if !t.Source.Valid() {
			return nil, fmt.Errorf("seed transaction %s: %w: %q", t.ID, ledger.ErrInvalidSource, t.Source)
		}
		t.FanID = d.Fan.ID
		// history is newest first
		t.Sequence = int64(n - i)
	}

	for i := range d.Contests {
		tier, err := ledger.ParseTier(string(d.Contests[i].MinLevel))
		if err != nil {
			return nil, fmt.Errorf("seed contest %s: %w", d.Contests[i].ID, err)
		}
		d.Contests[i].MinLevel = tier
	}

	l := ledger.New(&d.Fan)
	if l.Reconcile() {
		d.Fan = *l.Profile()
	}

	return &d, nil
}
