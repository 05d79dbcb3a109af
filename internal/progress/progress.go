// Package progress counts the checklist items of a project's memory bank.
package progress

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/scaffold"
	"github.com/contactstevenwarren/vibe-coding-setup/internal/watcher"
)

// Files are the memory bank documents that carry checklists, in report order.
var Files = []string{"progress.md", "implementation-plan.md"}

// Untitled names items that appear before the first "##" heading.
const Untitled = "(untitled)"

var (
	itemRe    = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])\](?:\s|$)`)
	headingRe = regexp.MustCompile(`^##\s+(.+?)\s*#*\s*$`)
)

// Section is the checklist tally under one "##" heading.
type Section struct {
	Title string
	Done  int
	Open  int
}

// Total is Done plus Open.
func (s Section) Total() int { return s.Done + s.Open }

// File is the tally of one document.
type File struct {
	Name     string // relative to the memory bank
	Sections []Section
}

// Done counts checked items in the file.
func (f File) Done() int {
	n := 0
	for _, s := range f.Sections {
		n += s.Done
	}
	return n
}

// Total counts all items in the file.
func (f File) Total() int {
	n := 0
	for _, s := range f.Sections {
		n += s.Total()
	}
	return n
}

// Report is the tally of a whole project.
type Report struct {
	Root  string
	Files []File
}

// Done counts checked items across all files.
func (r *Report) Done() int {
	n := 0
	for _, f := range r.Files {
		n += f.Done()
	}
	return n
}

// Total counts all items across all files.
func (r *Report) Total() int {
	n := 0
	for _, f := range r.Files {
		n += f.Total()
	}
	return n
}

// Percent is the share of checked items, 0 when there are none.
func (r *Report) Percent() float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return float64(r.Done()) * 100 / float64(total)
}

// Parse tallies "- [ ]" and "- [x]" items by "##" section. Deeper headings
// stay within their "##" section and sections without items are dropped.
func Parse(r io.Reader) ([]Section, error) {
	var (
		sections []Section
		current  = Section{Title: Untitled}
		inFence  bool
	)
	flush := func() {
		if current.Total() > 0 {
			sections = append(sections, current)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			flush()
			current = Section{Title: m[1]}
			continue
		}
		if m := itemRe.FindStringSubmatch(line); m != nil {
			if m[1] == " " {
				current.Open++
			} else {
				current.Done++
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return sections, nil
}

// Tracker produces reports for one project and keeps parsed files cached
// until they change.
type Tracker struct {
	root  string
	dir   string
	cache *watcher.Cache[[]Section]
}

// NewTracker locates the project containing start and returns its tracker.
func NewTracker(start string) (*Tracker, error) {
	root, _, err := scaffold.FindRoot(start)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		root:  root,
		dir:   filepath.Join(root, scaffold.MemoryBankDir),
		cache: watcher.NewCache[[]Section](),
	}, nil
}

// Root is the project directory.
func (t *Tracker) Root() string { return t.root }

// Report tallies the tracked files. Missing files are skipped.
func (t *Tracker) Report() (*Report, error) {
	rep := &Report{Root: t.root}
	for _, name := range Files {
		path := filepath.Join(t.dir, name)

		sections, ok := t.cache.Get(path)
		if !ok {
			var err error
			sections, err = parseFile(path)
			if errors.Is(err, os.ErrNotExist) {
				slog.Debug("checklist file missing", "path", path)
				continue
			}
			if err != nil {
				return nil, err
			}
			t.cache.Set(path, sections)
		}
		rep.Files = append(rep.Files, File{Name: name, Sections: sections})
	}
	return rep, nil
}

func parseFile(path string) ([]Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sections, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return sections, nil
}

// Watch calls onChange with the current report, then again after every
// change to a tracked file, until ctx is done. Calls never overlap.
func (t *Tracker) Watch(ctx context.Context, debounce time.Duration, onChange func(*Report, error)) error {
	w, err := watcher.New(watcher.Options{
		Debounce: debounce,
		Match:    t.tracked,
	})
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.AddRoot(t.dir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", t.dir, err)
	}

	var mu sync.Mutex
	refresh := func() {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		onChange(t.Report())
	}

	// The cache must drop the stale entry before the refresh reads it.
	w.Subscribe(t.cache)
	w.SubscribeFunc(func(watcher.Event) { refresh() })

	refresh()
	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (t *Tracker) tracked(path string) bool {
	if filepath.Dir(path) != t.dir {
		return false
	}
	base := filepath.Base(path)
	for _, name := range Files {
		if base == name {
			return true
		}
	}
	return false
}
