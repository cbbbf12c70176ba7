package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"timeless-mapper/internal/jewel"
)

const testTree = `{
  "100": {"x": 0, "y": 0, "name": "Jewel Socket", "connections": [2]},
  "1": {"x": 100, "y": 0, "name": "Iron Reflexes", "is_keystone": true},
  "2": {"x": 200, "y": 0, "name": "Heart of Oak", "is_notable": true, "connections": [100]},
  "3": {"x": 0, "y": 300, "name": "Wandering Path", "is_notable": true}
}`

const testWeights = `{
  "notables": [
    {"id": "abyss_notable_1", "name": "Alpha", "spawn_weight": 100},
    {"id": "abyss_notable_2", "name": "Bravo", "spawn_weight": 300}
  ]
}`

func writeData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "psg_passive_nodes.json"), []byte(testTree), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "abyss_spawn_weights.json"), []byte(testWeights), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestRun_ListSockets(t *testing.T) {
	dir := writeData(t)
	var buf bytes.Buffer
	if err := run(context.Background(), []string{"-data", dir, "-list-sockets"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Found 1 jewel sockets") || !strings.Contains(out, "100") {
		t.Errorf("output = %q", out)
	}
}

func TestRun_AnalyzeSeed(t *testing.T) {
	dir := writeData(t)
	var buf bytes.Buffer
	err := run(context.Background(), []string{"-data", dir, "-socket", "100", "-seed", "1234", "-faction", "tecrod"}, &buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"SEED ANALYSIS: 1234 at Socket 100",
		"Tribute to: Tacati",
		"Keystone granted: Sacrifice of Blood",
		"Radius: 1500 (Very Large)",
		"Notables transformed: 2",
		"Keystone in radius: Yes",
		"Iron Reflexes -> Sacrifice of Blood",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_AnalyzeSeedZero(t *testing.T) {
	dir := writeData(t)
	var buf bytes.Buffer
	if err := run(context.Background(), []string{"-data", dir, "-socket", "100", "-seed", "0"}, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "SEED ANALYSIS: 0 at Socket 100") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRun_CompareAndFind(t *testing.T) {
	dir := writeData(t)
	var buf bytes.Buffer
	if err := run(context.Background(), []string{"-data", dir, "-socket", "100", "-compare", "100, 200,300", "-radius", "small"}, &buf); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !strings.Contains(buf.String(), "Comparing 3 seeds: [100 200 300]") {
		t.Errorf("compare output = %q", buf.String())
	}

	buf.Reset()
	if err := run(context.Background(), []string{"-data", dir, "-socket", "100", "-find", "bravo", "-at-node", "2", "-max", "2"}, &buf); err != nil {
		t.Fatalf("find: %v", err)
	}
	if got := strings.Count(buf.String(), "Seed: "); got != 2 {
		t.Errorf("found %d seeds, want 2:\n%s", got, buf.String())
	}
}

func TestRun_Errors(t *testing.T) {
	dir := writeData(t)
	tests := [][]string{
		{"-data", dir},
		{"-data", dir, "-socket", "100"},
		{"-data", dir, "-socket", "100", "-find", "Bravo"},
		{"-data", dir, "-socket", "100", "-seed", "5", "-faction", "Nobody"},
		{"-data", dir, "-socket", "100", "-seed", "5", "-radius", "enormous"},
		{"-data", dir, "-socket", "100", "-seed", "4294967296"},
		{"-data", filepath.Join(dir, "missing"), "-list-sockets"},
	}
	for _, args := range tests {
		if err := run(context.Background(), args, &bytes.Buffer{}); err == nil {
			t.Errorf("run(%v) succeeded, want error", args)
		}
	}
}

func TestParseSeeds(t *testing.T) {
	got, err := parseSeeds(" 79, 30977 ,,4000000000")
	if err != nil {
		t.Fatalf("parseSeeds: %v", err)
	}
	if want := []uint32{79, 30977, 4000000000}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseSeeds = %v, want %v", got, want)
	}
	if _, err := parseSeeds("12,abc"); err == nil {
		t.Error("invalid seed accepted")
	}
	if _, err := parseSeeds(" , "); err == nil {
		t.Error("empty list accepted")
	}
}

func TestCountNotables(t *testing.T) {
	got := countNotables([]jewel.TransformedNode{
		{NewName: "Bravo"}, {NewName: "Alpha"}, {NewName: "Bravo"}, {NewName: "Charlie"},
	})
	want := []notableCount{{"Bravo", 2}, {"Alpha", 1}, {"Charlie", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("countNotables = %v, want %v", got, want)
	}
}
