// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index builds and queries the persistent vector collection.
// Vectors live in an HNSW graph exported to disk; the flattened work
// metadata lives in a SQLite table keyed by the same work IDs.
package index

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/coder/hnsw"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/journal-engine/pkg/types"
)

const (
	vectorsFile  = "vectors.hnsw"
	mappingFile  = "vectors.hnsw.meta"
	dbFile       = "metadata.db"
	manifestFile = "collection.yaml"
	summaryFile  = "journal_summary.json"
)

// DimensionMismatchError reports a vector whose width differs from the
// collection's.
type DimensionMismatchError struct {
	Expected, Got int
}

func (e DimensionMismatchError) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// Collection is one named vector collection with its metadata table.
type Collection struct {
	graph *hnsw.Graph[uint64]
	db    *sql.DB
	dir   string
	name  string
	dims  int

	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

// collectionMeta is the gob-persisted sidecar for the graph file.
type collectionMeta struct {
	Name       string
	Dimensions int
	IDMap      map[string]uint64
	NextKey    uint64
}

func newGraph() *hnsw.Graph[uint64] {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.EfSearch = 20
	g.Ml = 0.25
	return g
}

// Create destroys any prior collection files under dir and returns an
// empty collection. The vector dimensionality is fixed by the first Add.
func Create(dir, name string) (*Collection, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating collection directory: %w", err)
	}
	for _, f := range []string{vectorsFile, mappingFile, dbFile, manifestFile} {
		if err := os.Remove(filepath.Join(dir, f)); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("removing prior collection file %s: %w", f, err)
		}
	}

	db, err := openMetadataDB(dir)
	if err != nil {
		return nil, err
	}

	return &Collection{
		graph:  newGraph(),
		db:     db,
		dir:    dir,
		name:   name,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}, nil
}

// Open loads a previously saved collection from dir.
func Open(dir string) (*Collection, error) {
	metaF, err := os.Open(filepath.Join(dir, mappingFile))
	if err != nil {
		return nil, fmt.Errorf("opening collection mapping: %w", err)
	}
	defer metaF.Close()

	var meta collectionMeta
	if err := gob.NewDecoder(metaF).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decoding collection mapping: %w", err)
	}

	graph := newGraph()
	graphF, err := os.Open(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("opening collection vectors: %w", err)
	}
	defer graphF.Close()

	// Import requires an io.ByteReader.
	if err := graph.Import(bufio.NewReader(graphF)); err != nil {
		return nil, fmt.Errorf("importing vector graph: %w", err)
	}

	db, err := openMetadataDB(dir)
	if err != nil {
		return nil, err
	}

	c := &Collection{
		graph:   graph,
		db:      db,
		dir:     dir,
		name:    meta.Name,
		dims:    meta.Dimensions,
		idMap:   meta.IDMap,
		keyMap:  make(map[uint64]string, len(meta.IDMap)),
		nextKey: meta.NextKey,
	}
	for id, key := range meta.IDMap {
		c.keyMap[key] = id
	}
	return c, nil
}

func openMetadataDB(dir string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("opening metadata database: %w", err)
	}
	schema := `CREATE TABLE IF NOT EXISTS works (
		id TEXT PRIMARY KEY,
		title TEXT,
		abstract TEXT,
		authors TEXT,
		journal TEXT,
		year TEXT,
		volume TEXT,
		issue TEXT,
		doi TEXT,
		publisher TEXT,
		url TEXT,
		type TEXT,
		language TEXT,
		references_count INTEGER,
		is_referenced_by_count INTEGER
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating metadata schema: %w", err)
	}
	return db, nil
}

// Count returns the number of works in the collection.
func (c *Collection) Count() int { return len(c.idMap) }

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Close releases the metadata database.
func (c *Collection) Close() error { return c.db.Close() }

// Add inserts one work with its vector, keyed by the work's stable ID.
// An existing ID is replaced. The first Add fixes the collection's
// dimensionality; later vectors must match it.
func (c *Collection) Add(ctx context.Context, work types.Work, vector []float32) error {
	if work.ID == "" {
		return fmt.Errorf("work has no id")
	}
	if c.dims == 0 {
		c.dims = len(vector)
	}
	if len(vector) != c.dims {
		return DimensionMismatchError{Expected: c.dims, Got: len(vector)}
	}

	if old, ok := c.idMap[work.ID]; ok {
		// Lazy delete: orphan the old graph node, the mapping decides
		// what is visible.
		delete(c.keyMap, old)
	}
	key := c.nextKey
	c.nextKey++
	c.graph.Add(hnsw.MakeNode(key, vector))
	c.idMap[work.ID] = key
	c.keyMap[key] = work.ID

	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO works
		 (id, title, abstract, authors, journal, year, volume, issue, doi,
		  publisher, url, type, language, references_count, is_referenced_by_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		work.ID, work.Title, work.Abstract,
		joinAuthors(work.Metadata.Authors),
		work.Metadata.ContainerTitle, work.Year(),
		work.Metadata.Volume, work.Metadata.Issue, work.Metadata.DOI,
		work.Metadata.Publisher, work.Metadata.URL, work.Metadata.Type,
		work.Metadata.Language, work.Metadata.ReferencesCount,
		work.Metadata.IsReferencedByCount,
	)
	if err != nil {
		return fmt.Errorf("inserting metadata for %s: %w", work.ID, err)
	}
	return nil
}

// Result is one search hit joined with its metadata row.
type Result struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Journal string  `json:"journal"`
	Year    string  `json:"year"`
	DOI     string  `json:"doi"`
	Score   float64 `json:"score"`
}

// Search returns the k nearest works to the query vector, most similar
// first. Scores are cosine similarities.
func (c *Collection) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if c.dims != 0 && len(query) != c.dims {
		return nil, DimensionMismatchError{Expected: c.dims, Got: len(query)}
	}
	if c.graph.Len() == 0 {
		return nil, nil
	}

	var results []Result
	for _, node := range c.graph.Search(query, k) {
		id, ok := c.keyMap[node.Key]
		if !ok {
			continue // orphaned by a replace
		}
		r := Result{
			ID:    id,
			Score: 1 - float64(c.graph.Distance(query, node.Value)),
		}
		err := c.db.QueryRowContext(ctx,
			`SELECT title, journal, year, doi FROM works WHERE id = ?`, id,
		).Scan(&r.Title, &r.Journal, &r.Year, &r.DOI)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("reading metadata for %s: %w", id, err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Save persists the graph, the ID mapping sidecar, and the manifest.
func (c *Collection) Save() error {
	graphPath := filepath.Join(c.dir, vectorsFile)
	tmpPath := graphPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating vectors file: %w", err)
	}
	if err := c.graph.Export(f); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("exporting vector graph: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing vectors file: %w", err)
	}
	if err := os.Rename(tmpPath, graphPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming vectors file: %w", err)
	}

	metaPath := filepath.Join(c.dir, mappingFile)
	mf, err := os.Create(metaPath)
	if err != nil {
		return fmt.Errorf("creating mapping file: %w", err)
	}
	meta := collectionMeta{
		Name:       c.name,
		Dimensions: c.dims,
		IDMap:      c.idMap,
		NextKey:    c.nextKey,
	}
	if err := gob.NewEncoder(mf).Encode(meta); err != nil {
		mf.Close()
		return fmt.Errorf("encoding mapping: %w", err)
	}
	if err := mf.Close(); err != nil {
		return fmt.Errorf("closing mapping file: %w", err)
	}

	return c.writeManifest()
}

// manifest mirrors what a rebuilt collection contains.
type manifest struct {
	Name       string    `yaml:"name"`
	Dimensions int       `yaml:"dimensions"`
	Works      int       `yaml:"works"`
	BuiltAt    time.Time `yaml:"built_at"`
}

func (c *Collection) writeManifest() error {
	m := manifest{
		Name:       c.name,
		Dimensions: c.dims,
		Works:      c.Count(),
		BuiltAt:    time.Now().UTC(),
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(c.dir, manifestFile), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

func joinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}
