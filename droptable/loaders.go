package droptable

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BossDrops is one generated boss.<name>.drops.json file: expected economy
// item counts for a single kill of that boss.
type BossDrops struct {
	Boss       string             `json:"boss"`
	Difficulty string             `json:"difficulty"`
	Players    int                `json:"players"`
	Drops      map[string]float64 `json:"drops"`
}

// LoadBossDir assembles a drop table from every boss.*.drops.json in dir.
// Each file becomes one encounter type keyed by its boss name.
func LoadBossDir(dir string) (*Table, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "boss.*.drops.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("drop table: no boss drop files in %s", dir)
	}
	t := &Table{TC: make(map[string]map[string]float64, len(paths))}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var bd BossDrops
		if err := json.Unmarshal(raw, &bd); err != nil {
			return nil, fmt.Errorf("boss drops %s: %w", path, err)
		}
		if bd.Boss == "" {
			return nil, fmt.Errorf("boss drops %s: no boss name", path)
		}
		t.TC[bd.Boss] = bd.Drops
	}
	log.Debug().Int("bosses", len(t.TC)).Str("dir", dir).Msg("boss-drops-loaded")
	return t, nil
}

// LoadClassSetTSV reads a TreasureClassEx-style tab-separated table into a
// ClassSet for traversal.
func LoadClassSetTSV(path string) (ClassSet, error) {
	rows, header, err := readTSV(path)
	if err != nil {
		return nil, err
	}
	nameCol, ok := header["Treasure Class"]
	if !ok {
		return nil, fmt.Errorf("treasure classes %s: no Treasure Class column", path)
	}
	cs := make(ClassSet, len(rows))
	for _, row := range rows {
		name := colVal(row, nameCol)
		if name == "" {
			continue
		}
		c := RawClass{
			Name:   name,
			Picks:  atoiCol(row, header, "Picks"),
			NoDrop: atoiCol(row, header, "NoDrop"),
		}
		for i := 1; ; i++ {
			itemCol, ok := header[fmt.Sprintf("Item%d", i)]
			if !ok || colVal(row, itemCol) == "" {
				break
			}
			c.Outcomes = append(c.Outcomes, RawOutcome{
				Ref:  colVal(row, itemCol),
				Prob: atoiCol(row, header, fmt.Sprintf("Prob%d", i)),
			})
		}
		cs[name] = c
	}
	return cs, nil
}

// LoadMiscNames reads a misc.txt-style table into a code→title-cased
// display name mapping for economy bucketing.
func LoadMiscNames(path string) (map[string]string, error) {
	rows, header, err := readTSV(path)
	if err != nil {
		return nil, err
	}
	nameCol, ok := header["name"]
	if !ok {
		return nil, fmt.Errorf("misc table %s: no name column", path)
	}
	codeCol, ok := header["code"]
	if !ok {
		return nil, fmt.Errorf("misc table %s: no code column", path)
	}
	title := cases.Title(language.English)
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if code := colVal(row, codeCol); code != "" {
			out[code] = title.String(strings.ToLower(colVal(row, nameCol)))
		}
	}
	return out, nil
}

func colVal(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}

func readTSV(path string) ([][]string, map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("tsv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("tsv %s: empty", path)
	}
	header := make(map[string]int, len(records[0]))
	for i, col := range records[0] {
		header[strings.TrimSpace(col)] = i
	}
	return records[1:], header, nil
}

func atoiCol(row []string, header map[string]int, col string) int {
	i, ok := header[col]
	if !ok || i >= len(row) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(row[i]))
	if err != nil {
		return 0
	}
	return n
}
