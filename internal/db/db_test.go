package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/jewel"

	_ "modernc.org/sqlite"
)

// openTestDB opens an in-memory SQLite DB and runs migrations (for testing only).
func openTestDB(t *testing.T) *DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	// every pooled connection would get its own in-memory database
	sqlDB.SetMaxOpenConns(1)
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		t.Fatalf("migrate: %v", err)
	}
	return d
}

func sampleAnalysis(seed uint32) *jewel.SeedAnalysis {
	return &jewel.SeedAnalysis{
		Socket:     &graph.Node{ID: 26725, Name: graph.SocketName},
		Seed:       seed,
		Faction:    "Amanamu",
		Keystone:   "Sacrifice of Flesh",
		Radius:     1500,
		RadiusName: "Very Large",
		TransformedNodes: []jewel.TransformedNode{
			{OriginalNodeID: 1, OriginalName: "Strength", OriginalKind: graph.KindSmall, NewName: "Tribute", NewID: "abyss_small_tribute", Distance: 120.5, X: 1, Y: 2, Hops: 1, TributeValue: 8},
			{OriginalNodeID: 2, OriginalName: "Heart of Oak", OriginalKind: graph.KindNotable, NewName: "Alpha", NewID: "abyss_notable_1", Distance: 300, X: 3, Y: 4, Hops: -1},
		},
		TotalTribute: 8,
		NotableCount: 1,
		SmallCount:   1,
	}
}

func TestDB_MigrateIsIdempotent(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	var version int
	if err := d.sql.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("schema version = %d, want 2", version)
	}
}

func TestDB_OpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeless.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := d.InsertAnalysis("req", sampleAnalysis(1), 1); err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}
	d.Close()

	d, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer d.Close()
	if got := len(d.GetHistory(10)); got != 1 {
		t.Errorf("history after reopen = %d, want 1", got)
	}
}

func TestDB_AnalysisRoundTrip(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	a := sampleAnalysis(4000000000)
	id, err := d.InsertAnalysis("req-1", a, 42)
	if err != nil {
		t.Fatalf("InsertAnalysis: %v", err)
	}
	if id <= 0 {
		t.Fatal("InsertAnalysis returned 0")
	}

	records := d.GetHistory(5)
	if len(records) != 1 {
		t.Fatalf("GetHistory(5) len = %d, want 1", len(records))
	}
	r := records[0]
	if r.ID != id || r.RequestID != "req-1" || r.SocketID != 26725 {
		t.Errorf("record = %+v", r)
	}
	if r.Seed != 4000000000 {
		t.Errorf("Seed = %d, want 4000000000", r.Seed)
	}
	if r.Faction != "Amanamu" || r.Keystone != "Sacrifice of Flesh" || r.RadiusName != "Very Large" {
		t.Errorf("faction/keystone/radius = %q/%q/%q", r.Faction, r.Keystone, r.RadiusName)
	}
	if r.TotalTribute != 8 || r.NotableCount != 1 || r.SmallCount != 1 || r.KeystoneReplaced || r.DurationMs != 42 {
		t.Errorf("aggregates = %+v", r)
	}

	byID := d.GetHistoryByID(id)
	if byID == nil || *byID != r {
		t.Errorf("GetHistoryByID = %+v, want %+v", byID, r)
	}
	if d.GetHistoryByID(id+100) != nil {
		t.Error("GetHistoryByID for unknown id returned a record")
	}

	nodes := d.GetAnalysisNodes(id)
	if len(nodes) != 2 {
		t.Fatalf("GetAnalysisNodes len = %d, want 2", len(nodes))
	}
	for i := range nodes {
		if nodes[i] != a.TransformedNodes[i] {
			t.Errorf("node %d = %+v, want %+v", i, nodes[i], a.TransformedNodes[i])
		}
	}
}

func TestDB_InsertAnalysisCommitFailure(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	// A deferred foreign key is only checked at COMMIT.
	if _, err := d.sql.Exec(`
		CREATE TABLE commit_guard (id INTEGER PRIMARY KEY);
		CREATE TABLE commit_ref (ref INTEGER REFERENCES commit_guard(id) DEFERRABLE INITIALLY DEFERRED);
		CREATE TRIGGER fail_commit AFTER INSERT ON analysis_history
		BEGIN
			INSERT INTO commit_ref (ref) VALUES (-1);
		END;
	`); err != nil {
		t.Fatalf("setup: %v", err)
	}

	id, err := d.InsertAnalysis("req-1", sampleAnalysis(7), 1)
	if err == nil {
		t.Fatal("InsertAnalysis succeeded, want commit error")
	}
	if id != 0 {
		t.Errorf("id = %d, want 0", id)
	}
	if got := d.GetHistory(5); len(got) != 0 {
		t.Errorf("GetHistory len = %d, want 0", len(got))
	}
}

func TestDB_HistoryLimitAndOrder(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()
	for seed := uint32(1); seed <= 3; seed++ {
		if _, err := d.InsertAnalysis("", sampleAnalysis(seed), 0); err != nil {
			t.Fatal(err)
		}
	}
	records := d.GetHistory(2)
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].Seed != 3 || records[1].Seed != 2 {
		t.Errorf("order = %d, %d; want newest first", records[0].Seed, records[1].Seed)
	}
	if got := len(d.GetHistory(0)); got != 3 {
		t.Errorf("GetHistory(0) len = %d, want 3", got)
	}
}

func TestDB_DeleteAndClearHistory(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	keep, _ := d.InsertAnalysis("", sampleAnalysis(1), 0)
	drop, _ := d.InsertAnalysis("", sampleAnalysis(2), 0)
	old, _ := d.InsertAnalysis("", sampleAnalysis(3), 0)

	if err := d.DeleteHistory(drop); err != nil {
		t.Fatalf("DeleteHistory: %v", err)
	}
	if d.GetHistoryByID(drop) != nil {
		t.Error("deleted record still present")
	}
	if n := len(d.GetAnalysisNodes(drop)); n != 0 {
		t.Errorf("deleted record left %d nodes", n)
	}

	if _, err := d.sql.Exec("UPDATE analysis_history SET timestamp = '2000-01-01T00:00:00Z' WHERE id = ?", old); err != nil {
		t.Fatal(err)
	}
	n, err := d.ClearHistory(30)
	if err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if n != 1 {
		t.Errorf("ClearHistory removed %d, want 1", n)
	}
	if d.GetHistoryByID(keep) == nil {
		t.Error("recent record was cleared")
	}
	if len(d.GetAnalysisNodes(old)) != 0 {
		t.Error("cleared record left nodes")
	}
}

func TestDB_SavedSeeds(t *testing.T) {
	d := openTestDB(t)
	defer d.Close()

	if got := d.ListSavedSeeds(); len(got) != 0 {
		t.Fatalf("empty list = %v", got)
	}

	id, ok := d.AddSavedSeed(SavedSeed{SocketID: 26725, Seed: 12345, Faction: "Amanamu", Note: "two attack notables"})
	if !ok || id <= 0 {
		t.Fatalf("AddSavedSeed = %d, %v", id, ok)
	}
	if _, ok := d.AddSavedSeed(SavedSeed{SocketID: 26725, Seed: 12345, Faction: "Amanamu"}); ok {
		t.Error("duplicate saved seed inserted")
	}
	if _, ok := d.AddSavedSeed(SavedSeed{SocketID: 26725, Seed: 12345, Faction: "Ulaman"}); !ok {
		t.Error("same seed for another faction rejected")
	}

	items := d.ListSavedSeeds()
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[1].ID != id || items[1].Note != "two attack notables" || items[1].AddedAt == "" {
		t.Errorf("oldest item = %+v", items[1])
	}

	if !d.UpdateSavedSeedNote(id, "keep") {
		t.Error("UpdateSavedSeedNote returned false")
	}
	if d.UpdateSavedSeedNote(id+100, "x") {
		t.Error("UpdateSavedSeedNote on unknown id returned true")
	}
	d.DeleteSavedSeed(id)
	items = d.ListSavedSeeds()
	if len(items) != 1 || items[0].Faction != "Ulaman" {
		t.Errorf("after delete = %+v", items)
	}
}
