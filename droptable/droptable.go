// Package droptable models per-encounter item drop probabilities. A table
// maps each encounter type (treasure class) to the expected per-encounter
// count of each economy item. Tables are loaded once and read-only.
package droptable

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Table maps encounter type → item → expected drops per encounter.
type Table struct {
	TC map[string]map[string]float64 `json:"tc"`
}

// Load reads a drop table from a JSON file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("drop table %s: %w", path, err)
	}
	return &t, nil
}

// Merge folds another table's encounter types into t, overwriting any
// encounter type both tables define. Used to assemble one table from
// per-boss drop files.
func (t *Table) Merge(other *Table) {
	if t.TC == nil {
		t.TC = make(map[string]map[string]float64)
	}
	for tc, items := range other.TC {
		t.TC[tc] = items
	}
}

// Drops returns the item probabilities for one encounter type, or nil if
// the table has no entry for it.
func (t *Table) Drops(encounterType string) map[string]float64 {
	if t == nil {
		return nil
	}
	return t.TC[encounterType]
}

// ExpectedDrops combines an encounter profile (encounter type → expected
// encounters per run) with the table, yielding expected item counts for one
// run. Encounter types missing from the table contribute nothing and are
// reported back sorted, so callers can warn without aborting.
func (t *Table) ExpectedDrops(profile map[string]float64) (map[string]float64, []string) {
	out := make(map[string]float64)
	var missing []string
	for tc, count := range profile {
		if count <= 0 {
			continue
		}
		drops := t.Drops(tc)
		if drops == nil {
			missing = append(missing, tc)
			continue
		}
		for item, p := range drops {
			if p <= 0 {
				continue
			}
			out[item] += count * p
		}
	}
	sort.Strings(missing)
	return out, missing
}
