package doctor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// CrashDir is the directory under the data dir that holds crash reports.
const CrashDir = "crash_logs"

// Crash is the JSON document written for a panic.
type Crash struct {
	Error     string    `json:"error"`
	Stack     string    `json:"stack"`
	Version   string    `json:"version"`
	Args      []string  `json:"args"`
	GOOS      string    `json:"goos"`
	GOARCH    string    `json:"goarch"`
	Timestamp time.Time `json:"timestamp"`
}

var exit = os.Exit

var alertStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

func crashDir(dataDir string) string {
	return filepath.Join(dataDir, CrashDir)
}

// Recover must be deferred directly by main. On panic it writes a crash
// report, tells the user where it is and exits with status 1.
func Recover(dataDir, version string, w io.Writer) {
	r := recover()
	if r == nil {
		return
	}

	fmt.Fprintln(w, alertStyle.Render("vibe-coding-setup crashed unexpectedly"))
	fmt.Fprintf(w, "panic: %v\n", r)

	path, err := LogCrash(dataDir, Crash{
		Error:   fmt.Sprint(r),
		Stack:   string(debug.Stack()),
		Version: version,
		Args:    os.Args,
	})
	if err != nil {
		fmt.Fprintf(w, "could not save crash report: %v\n", err)
	} else {
		fmt.Fprintf(w, "crash report saved to %s\n", path)
	}
	exit(1)
}

// LogCrash writes c to the crash directory and returns the file path.
func LogCrash(dataDir string, c Crash) (string, error) {
	dir := crashDir(dataDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}
	c.GOOS, c.GOARCH = runtime.GOOS, runtime.GOARCH

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp(dir, fmt.Sprintf("crash_%s_*.json", c.Timestamp.Format("20060102_150405")))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// RecentCrashes counts crash reports modified within window.
func RecentCrashes(dataDir string, window time.Duration) (int, error) {
	entries, err := os.ReadDir(crashDir(dataDir))
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-window)
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "crash_") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			n++
		}
	}
	return n, nil
}
