package dataset

import (
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/KaramelBytes/maslow-cli/internal/table"
)

// Options tunes Load.
type Options struct {
	// Sources overrides the default source of an indicator; empty fields
	// keep their defaults.
	Sources map[Indicator]Source
}

// Load reads one indicator from dir and validates the resulting panel.
func Load(dir string, ind Indicator, opt Options) (*Panel, error) {
	if !ind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndicator, ind)
	}
	src := DefaultSources()[ind]
	if o, ok := opt.Sources[ind]; ok {
		src = o.merge(src)
	}
	r, err := readerFor(src.Layout)
	if err != nil {
		return nil, &SourceError{Indicator: ind, Err: err}
	}
	var tables []*table.Table
	for _, f := range src.Files {
		p := f
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, f)
		}
		ts, err := openTables(p, src.Sheets)
		if err != nil {
			return nil, &SourceError{Indicator: ind, Path: p, Err: err}
		}
		tables = append(tables, ts...)
	}
	panel := newPanel(ind)
	if err := r.Read(panel, src, tables); err != nil {
		return nil, &SourceError{Indicator: ind, Err: err}
	}
	if err := panel.Validate(); err != nil {
		return nil, &SourceError{Indicator: ind, Err: err}
	}
	return panel, nil
}

// Loader loads panels from one directory and caches them. It is safe for
// concurrent use; callers must treat returned panels as read-only.
type Loader struct {
	Dir     string
	Options Options

	mu     sync.Mutex
	panels map[Indicator]*Panel
	group  singleflight.Group
}

// NewLoader returns a caching loader rooted at dir.
func NewLoader(dir string, opt Options) *Loader {
	return &Loader{Dir: dir, Options: opt, panels: map[Indicator]*Panel{}}
}

// Load returns the cached panel for ind, reading it on first use.
func (l *Loader) Load(ind Indicator) (*Panel, error) {
	l.mu.Lock()
	if p, ok := l.panels[ind]; ok {
		l.mu.Unlock()
		return p, nil
	}
	l.mu.Unlock()
	v, err, _ := l.group.Do(string(ind), func() (any, error) {
		p, err := Load(l.Dir, ind, l.Options)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		if l.panels == nil {
			l.panels = map[Indicator]*Panel{}
		}
		l.panels[ind] = p
		l.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Panel), nil
}
