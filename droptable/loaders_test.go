package droptable

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestLoadBossDir(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	write := func(name, doc string) {
		is.NoErr(os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644))
	}
	write("boss.countess.drops.json", `{"boss":"countess","difficulty":"H","players":1,"drops":{"IST":0.02,"PG":0.5}}`)
	write("boss.mephisto.drops.json", `{"boss":"mephisto","difficulty":"H","players":1,"drops":{"OHM":0.01}}`)
	write("notes.txt", "ignored")

	table, err := LoadBossDir(dir)
	is.NoErr(err)
	is.Equal(len(table.TC), 2)
	is.Equal(table.TC["countess"]["IST"], 0.02)
	is.Equal(table.TC["mephisto"]["OHM"], 0.01)

	_, err = LoadBossDir(t.TempDir())
	is.True(err != nil) // empty dir
}

func TestShippedBossDrops(t *testing.T) {
	is := is.New(t)
	table, err := LoadBossDir(filepath.Join("..", "data", "boss_drops"))
	is.NoErr(err)

	// One file per boss the generator emits, plus travincal as council5.
	for _, boss := range []string{
		"andariel", "baal", "council", "council5", "countess",
		"diablo", "mephisto", "nihl", "summoner",
	} {
		is.True(table.Drops(boss) != nil)
	}
	// Travincal is five council kills.
	is.True(table.TC["council5"]["RAL"] > table.TC["council"]["RAL"])
}

func TestLoadClassSetTSV(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "TreasureClassEx.txt")
	doc := "Treasure Class\tPicks\tNoDrop\tItem1\tProb1\tItem2\tProb2\n" +
		"Countess (H)\t-2\t\tCRunes\t3\tCItems\t1\n" +
		"CRunes\t1\t19\tr08\t41\t\t\n"
	is.NoErr(os.WriteFile(path, []byte(doc), 0o644))

	cs, err := LoadClassSetTSV(path)
	is.NoErr(err)
	is.Equal(len(cs), 2)
	is.Equal(cs["Countess (H)"].Picks, -2)
	is.Equal(len(cs["Countess (H)"].Outcomes), 2)
	is.Equal(cs["Countess (H)"].Outcomes[0], RawOutcome{Ref: "CRunes", Prob: 3})
	is.Equal(cs["CRunes"].NoDrop, 19)
}

func TestLoadMiscNames(t *testing.T) {
	is := is.New(t)
	path := filepath.Join(t.TempDir(), "misc.txt")
	doc := "name\tcode\n" +
		"Mal Rune\tr23\n" +
		"key of terror\tpk1\n" +
		"\tskip\n"
	is.NoErr(os.WriteFile(path, []byte(doc), 0o644))

	names, err := LoadMiscNames(path)
	is.NoErr(err)
	is.Equal(names["r23"], "Mal Rune")
	is.Equal(names["pk1"], "Key Of Terror") // title-cased for bucketing
	is.Equal(names["skip"], "")
}
