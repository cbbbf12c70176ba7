// Package refdata acquires and parses the passive tree and spawn weight
// reference files. Missing files are fetched once from their configured
// source; parse failures are fatal.
package refdata

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	getter "github.com/hashicorp/go-getter"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"timeless-mapper/internal/apperr"
	"timeless-mapper/internal/graph"
	"timeless-mapper/internal/jewel"
	"timeless-mapper/internal/logger"
)

// Default file names inside the data directory.
const (
	DefaultTreeFile    = "psg_passive_nodes.json"
	DefaultWeightsFile = "abyss_spawn_weights.json"
)

// Sources names the reference files and, optionally, where to fetch them
// from when they are not on disk. URLs accept any go-getter source string.
type Sources struct {
	TreeFile    string
	WeightsFile string
	TreeURL     string
	WeightsURL  string
}

// Data is the parsed reference data plus a mapper over it.
type Data struct {
	Tree    *graph.Tree
	Weights *jewel.SpawnWeightTable
	Mapper  *jewel.Mapper
}

// Loader loads reference data from a data directory. Concurrent Load calls
// share a single load.
type Loader struct {
	DataDir string
	Sources Sources

	group singleflight.Group
}

// NewLoader creates a Loader, filling in default file names.
func NewLoader(dataDir string, src Sources) *Loader {
	if src.TreeFile == "" {
		src.TreeFile = DefaultTreeFile
	}
	if src.WeightsFile == "" {
		src.WeightsFile = DefaultWeightsFile
	}
	return &Loader{DataDir: dataDir, Sources: src}
}

// Load fetches missing files, then parses both reference files.
func (l *Loader) Load(ctx context.Context) (*Data, error) {
	v, err, _ := l.group.Do("load", func() (any, error) {
		return l.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Data), nil
}

func (l *Loader) load(ctx context.Context) (*Data, error) {
	treePath := l.path(l.Sources.TreeFile)
	weightsPath := l.path(l.Sources.WeightsFile)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.ensure(gctx, treePath, l.Sources.TreeURL) })
	g.Go(func() error { return l.ensure(gctx, weightsPath, l.Sources.WeightsURL) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("DATA", "Loading passive tree...")
	tree, err := parseFile(treePath, graph.Load)
	if err != nil {
		return nil, err
	}
	logger.Info("DATA", "Loading spawn weights...")
	weights, err := parseFile(weightsPath, jewel.LoadSpawnWeights)
	if err != nil {
		return nil, err
	}

	data := &Data{
		Tree:    tree,
		Weights: weights,
		Mapper:  jewel.NewMapper(tree, weights),
	}

	logger.Section("Reference Data")
	logger.Stats("Passive nodes", tree.Len())
	logger.Stats("Jewel sockets", len(tree.JewelSockets()))
	logger.Stats("Eligible notables", weights.Len())
	logger.Stats("Total spawn weight", weights.TotalWeight())
	return data, nil
}

func (l *Loader) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.DataDir, name)
}

// ensure makes sure dst exists, fetching it from src when it does not.
func (l *Loader) ensure(ctx context.Context, dst, src string) error {
	if _, err := os.Stat(dst); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return apperr.Wrap(apperr.CodeFatal, err, "stat "+dst)
	}
	if src == "" {
		return apperr.Fatalf("reference file %s is missing and no source is configured", dst)
	}
	logger.Info("DATA", fmt.Sprintf("Fetching %s...", filepath.Base(dst)))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return apperr.Wrap(apperr.CodeFatal, err, "create data dir")
	}
	if err := getter.GetFile(dst, src, getter.WithContext(ctx)); err != nil {
		return apperr.Wrap(apperr.CodeFatal, err, "fetch "+src)
	}
	logger.Success("DATA", "Fetched "+filepath.Base(dst))
	return nil
}

// parseFile opens path and hands it to parse. Any failure is fatal: the
// caller must not run on partial data.
func parseFile[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, apperr.Wrap(apperr.CodeFatal, err, "open "+path)
	}
	defer f.Close()
	v, err := parse(f)
	if err != nil {
		return zero, apperr.Wrap(apperr.CodeFatal, err, "parse "+filepath.Base(path))
	}
	return v, nil
}
