// Package doctor diagnoses the environment the tool runs in and records
// crash reports.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
)

// MinFreeBytes is the smallest amount of free disk space that passes.
const MinFreeBytes = 10 << 20

// Severity grades a check result.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityPass
	SeverityWarn
	SeverityFail
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityPass:
		return "ok"
	case SeverityWarn:
		return "warn"
	case SeverityFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Result is the outcome of one check.
type Result struct {
	Name     string
	Severity Severity
	Detail   string
}

// Probe reads system resources. *sys.Monitor satisfies it.
type Probe interface {
	GetSnapshot() (sys.Snapshot, error)
	DiskSpace(path string) (sys.DiskSpace, error)
}

// Options configures Run. Zero values fall back to the real environment.
type Options struct {
	DataDir    string
	WorkDir    string
	LoadConfig func() error
	Probe      Probe
	LookPath   func(file string) (string, error)
	MinFree    uint64
}

// Tools are the executables the doctor looks for. Missing tools only warn.
var Tools = []string{"git", "cursor"}

// Run executes every check in order.
func Run(ctx context.Context, opts Options) []Result {
	if opts.Probe == nil {
		opts.Probe = sys.NewMonitor()
	}
	if opts.LookPath == nil {
		opts.LookPath = exec.LookPath
	}
	if opts.MinFree == 0 {
		opts.MinFree = MinFreeBytes
	}
	if opts.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.WorkDir = wd
		}
	}

	var results []Result
	add := func(r Result) { results = append(results, r) }

	add(checkConfig(opts.LoadConfig))
	add(checkWritable("data directory", opts.DataDir))
	add(checkWritable("working directory", opts.WorkDir))
	add(checkDisk(opts.Probe, opts.WorkDir, opts.MinFree))
	for _, tool := range Tools {
		if ctx.Err() != nil {
			break
		}
		add(checkTool(opts.LookPath, tool))
	}
	add(checkCrashes(opts.DataDir))
	add(checkSystem(opts.Probe))
	return results
}

// Failed reports whether any result is a failure.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Severity == SeverityFail {
			return true
		}
	}
	return false
}

func checkConfig(load func() error) Result {
	r := Result{Name: "config"}
	if load == nil {
		r.Severity = SeverityInfo
		r.Detail = "not checked"
		return r
	}
	if err := load(); err != nil {
		r.Severity = SeverityFail
		r.Detail = err.Error()
		return r
	}
	r.Severity = SeverityPass
	r.Detail = "loaded"
	return r
}

func checkWritable(name, dir string) Result {
	r := Result{Name: name}
	if dir == "" {
		r.Severity = SeverityFail
		r.Detail = "unknown location"
		return r
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		r.Severity = SeverityFail
		r.Detail = err.Error()
		return r
	}
	f, err := os.CreateTemp(dir, ".vibe-doctor-*")
	if err != nil {
		r.Severity = SeverityFail
		r.Detail = fmt.Sprintf("%s is not writable: %v", dir, err)
		return r
	}
	f.Close()
	os.Remove(f.Name())

	r.Severity = SeverityPass
	r.Detail = dir
	return r
}

func checkDisk(p Probe, dir string, min uint64) Result {
	r := Result{Name: "disk space"}
	ds, err := p.DiskSpace(dir)
	if err != nil {
		r.Severity = SeverityWarn
		r.Detail = err.Error()
		return r
	}
	r.Detail = fmt.Sprintf("%s free of %s", humanBytes(ds.Free), humanBytes(ds.Total))
	if ds.Free < min {
		r.Severity = SeverityFail
		r.Detail += fmt.Sprintf(", need at least %s", humanBytes(min))
		return r
	}
	r.Severity = SeverityPass
	return r
}

func checkTool(lookPath func(string) (string, error), tool string) Result {
	r := Result{Name: tool}
	path, err := lookPath(tool)
	if err != nil {
		r.Severity = SeverityWarn
		r.Detail = "not found on PATH"
		return r
	}
	r.Severity = SeverityPass
	r.Detail = path
	return r
}

func checkCrashes(dataDir string) Result {
	r := Result{Name: "recent crashes"}
	n, err := RecentCrashes(dataDir, 24*time.Hour)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		r.Severity = SeverityWarn
		r.Detail = err.Error()
		return r
	}
	switch {
	case n == 0:
		r.Severity = SeverityPass
		r.Detail = "none in the last 24h"
	default:
		r.Severity = SeverityWarn
		r.Detail = fmt.Sprintf("%d in the last 24h, see %s", n, crashDir(dataDir))
	}
	return r
}

func checkSystem(p Probe) Result {
	r := Result{Name: "system", Severity: SeverityInfo}
	snap, err := p.GetSnapshot()
	if err != nil {
		r.Detail = err.Error()
		return r
	}
	r.Detail = fmt.Sprintf("cpu %.1f%%, memory %.1f%%", snap.CPUUsage, snap.MemoryUsage)
	return r
}

func humanBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
