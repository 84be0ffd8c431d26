// Package prices resolves tradable item values from a phase-scoped price
// table. A quote of {O, N} means "O of this item trade for N Ist", so the
// unit value is N/O. Anything the table cannot price is worth zero; missing
// data is never an error here.
package prices

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash"
)

// Quote is one item's standing trade order under a single pricing phase.
type Quote struct {
	OrderSize  float64 `json:"O"`
	OrderValue float64 `json:"N"`
}

// ZeroQuote prices an item at nothing. It is returned whenever the phase is
// absent, the item is absent, or the stored order is malformed.
var ZeroQuote = Quote{OrderSize: 1, OrderValue: 0}

// UnitValue is the Ist value of a single item.
func (q Quote) UnitValue() float64 {
	if q.OrderSize <= 0 || q.OrderValue < 0 {
		return 0
	}
	return q.OrderValue / q.OrderSize
}

func (q Quote) valid() bool {
	return q.OrderSize > 0 && q.OrderValue >= 0
}

// Table is a loaded price table. It must be treated as immutable for the
// lifetime of any Index that has seen it.
type Table struct {
	DefaultPhase string                      `json:"defaultPhase"`
	Phases       map[string]map[string]Quote `json:"phases"`
}

// Load reads a price table from a JSON file.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("price table %s: %w", path, err)
	}
	if len(t.Phases) == 0 {
		return nil, fmt.Errorf("price table %s: no phases", path)
	}
	if t.DefaultPhase == "" {
		return nil, fmt.Errorf("price table %s: no defaultPhase", path)
	}
	return &t, nil
}

// Phase returns the quote set for the given phase, falling back to the
// table's default phase when phase is empty.
func (t *Table) Phase(phase string) map[string]Quote {
	if phase == "" {
		phase = t.DefaultPhase
	}
	return t.Phases[phase]
}

// Index caches the lowercase→canonical key map for each phase it has
// resolved against. Entries are keyed by a digest of the phase's canonical
// keys rather than by object identity, so reloading an identical table hits
// the same entries and a changed table can never alias a stale index.
type Index struct {
	mu    sync.RWMutex
	folds map[uint64]map[string]string
}

func NewIndex() *Index {
	return &Index{folds: make(map[uint64]map[string]string)}
}

// Quote looks up an item case-insensitively in the given phase of t. An
// empty phase means the table's default phase.
func (ix *Index) Quote(t *Table, phase, item string) Quote {
	quotes := t.Phase(phase)
	if quotes == nil {
		return ZeroQuote
	}
	canonical, ok := ix.fold(quotes)[strings.ToLower(item)]
	if !ok {
		return ZeroQuote
	}
	q := quotes[canonical]
	if !q.valid() {
		return ZeroQuote
	}
	return q
}

// Canonical returns the phase's canonical casing for an item identifier,
// or the input unchanged if the phase does not price it.
func (ix *Index) Canonical(t *Table, phase, item string) string {
	quotes := t.Phase(phase)
	if quotes == nil {
		return item
	}
	if canonical, ok := ix.fold(quotes)[strings.ToLower(item)]; ok {
		return canonical
	}
	return item
}

func (ix *Index) fold(quotes map[string]Quote) map[string]string {
	d := digest(quotes)
	ix.mu.RLock()
	m, ok := ix.folds[d]
	ix.mu.RUnlock()
	if ok {
		return m
	}
	m = make(map[string]string, len(quotes))
	for k := range quotes {
		m[strings.ToLower(k)] = k
	}
	ix.mu.Lock()
	ix.folds[d] = m
	ix.mu.Unlock()
	return m
}

func digest(quotes map[string]Quote) uint64 {
	keys := make([]string, 0, len(quotes))
	for k := range quotes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := xxhash.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return h.Sum64()
}
