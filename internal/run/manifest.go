// Package run records what an analyze invocation read and wrote.
package run

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/maslow-cli/internal/analysis"
	"github.com/KaramelBytes/maslow-cli/internal/utils"
)

const manifestFileName = "run.json"

// Manifest is persisted as run.json in the output directory.
type Manifest struct {
	ID         string        `json:"id"`
	DataDir    string        `json:"data_dir"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Pairs      []*PairRecord `json:"pairs"`

	// Not serialized: directory holding run.json
	rootDir string `json:"-"`
}

// PairRecord summarizes one analyzed pair.
type PairRecord struct {
	Name      string       `json:"name"`
	Lower     string       `json:"lower"`
	Higher    string       `json:"higher"`
	Years     []YearRecord `json:"years,omitempty"`
	Skipped   []int        `json:"skipped,omitempty"`
	Artifacts []string     `json:"artifacts,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// YearRecord holds the join loss for one year.
type YearRecord struct {
	Year      int `json:"year"`
	Rows      int `json:"rows"`
	LeftOnly  int `json:"left_only"`
	RightOnly int `json:"right_only"`
	Dropped   int `json:"dropped"`
}

// New starts a manifest for a run writing into outputDir.
func New(outputDir, dataDir string) *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		DataDir:   dataDir,
		StartedAt: time.Now(),
		rootDir:   outputDir,
	}
}

// Load reads run.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// Path is the location of run.json.
func (m *Manifest) Path() string { return filepath.Join(m.rootDir, manifestFileName) }

// Record adds the outcome of a pair and the files written for it.
func (m *Manifest) Record(r *analysis.Result, artifacts []string) *PairRecord {
	rec := &PairRecord{
		Name:    r.Pair.Name,
		Lower:   string(r.Pair.Lower),
		Higher:  string(r.Pair.Higher),
		Skipped: r.Skipped,
	}
	for _, y := range r.Years {
		rec.Years = append(rec.Years, YearRecord{
			Year:      y.Year,
			Rows:      y.Join.Rows(),
			LeftOnly:  len(y.Join.LeftOnly),
			RightOnly: len(y.Join.RightOnly),
			Dropped:   y.Dropped,
		})
	}
	rec.Artifacts = m.relative(artifacts)
	m.Pairs = append(m.Pairs, rec)
	return rec
}

// Fail records a pair that produced no result.
func (m *Manifest) Fail(name string, err error) {
	m.Pairs = append(m.Pairs, &PairRecord{Name: name, Error: err.Error()})
}

// Artifacts returns every artifact path, sorted.
func (m *Manifest) Artifacts() []string {
	var out []string
	for _, p := range m.Pairs {
		out = append(out, p.Artifacts...)
	}
	sort.Strings(out)
	return out
}

func (m *Manifest) relative(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, err := filepath.Rel(m.rootDir, p); err == nil && !filepath.IsAbs(rel) && rel != "" && rel[0] != '.' {
			p = rel
		}
		out = append(out, filepath.ToSlash(p))
	}
	return out
}

// Save stamps FinishedAt and writes run.json atomically.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest directory not set")
	}
	m.FinishedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}
