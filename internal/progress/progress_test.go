package progress

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/scaffold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	doc := `# App - Progress

- [x] stray item

## Setup
- [x] Project created
- [X] Repo initialised
- [ ] Tech stack confirmed
  * [ ] nested bullet counts

### Details
- [ ] still part of Setup

## Notes ##
Nothing to do here.

## Release
` + "```" + `
- [ ] example inside a code fence
` + "```" + `
+ [x] shipped
- [] not a checkbox
`
	sections, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []Section{
		{Title: Untitled, Done: 1},
		{Title: "Setup", Done: 2, Open: 3},
		{Title: "Release", Done: 1},
	}, sections)
}

func TestParseBareCheckboxes(t *testing.T) {
	sections, err := Parse(strings.NewReader("## A\n- [x]\n- [ ]\n- [x] done\n- [x]trailing text\n"))
	require.NoError(t, err)
	assert.Equal(t, []Section{{Title: "A", Done: 2, Open: 1}}, sections)
}

func TestParseEmpty(t *testing.T) {
	sections, err := Parse(strings.NewReader("# Nothing\n\n## Empty\n"))
	require.NoError(t, err)
	assert.Empty(t, sections)
}

func newProject(t *testing.T) string {
	t.Helper()
	res, err := scaffold.Create(context.Background(), scaffold.Options{
		ParentDir: t.TempDir(),
		Name:      "tracked",
	})
	require.NoError(t, err)
	return res.Path
}

func TestTrackerReportOnScaffoldedProject(t *testing.T) {
	root := newProject(t)

	tr, err := NewTracker(filepath.Join(root, scaffold.MemoryBankDir))
	require.NoError(t, err)
	assert.Equal(t, root, tr.Root())

	rep, err := tr.Report()
	require.NoError(t, err)
	require.Len(t, rep.Files, 2)
	assert.Equal(t, "progress.md", rep.Files[0].Name)
	assert.Equal(t, "implementation-plan.md", rep.Files[1].Name)

	assert.Equal(t, 1, rep.Files[0].Done())
	assert.Equal(t, 7, rep.Files[0].Total())
	assert.Equal(t, 9, rep.Files[1].Total())
	assert.Equal(t, 1, rep.Done())
	assert.Equal(t, 16, rep.Total())
	assert.InDelta(t, 6.25, rep.Percent(), 0.001)
}

func TestTrackerSkipsMissingFiles(t *testing.T) {
	root := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(root, scaffold.MemoryBankDir, "implementation-plan.md")))

	tr, err := NewTracker(root)
	require.NoError(t, err)

	rep, err := tr.Report()
	require.NoError(t, err)
	require.Len(t, rep.Files, 1)
	assert.Equal(t, "progress.md", rep.Files[0].Name)
}

func TestTrackerOutsideProject(t *testing.T) {
	_, err := NewTracker(t.TempDir())
	assert.ErrorIs(t, err, scaffold.ErrNoProject)
}

func TestPercentWithoutItems(t *testing.T) {
	assert.Zero(t, (&Report{}).Percent())
}

func TestTrackerWatch(t *testing.T) {
	root := newProject(t)
	tr, err := NewTracker(root)
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		dones []int
	)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- tr.Watch(ctx, 20*time.Millisecond, func(rep *Report, err error) {
			if err != nil {
				return
			}
			mu.Lock()
			dones = append(dones, rep.Done())
			mu.Unlock()
		})
	}()

	latest := func() int {
		mu.Lock()
		defer mu.Unlock()
		if len(dones) == 0 {
			return -1
		}
		return dones[len(dones)-1]
	}
	require.Eventually(t, func() bool { return latest() == 1 }, 3*time.Second, 10*time.Millisecond)
	// Let the watcher register its directories before editing.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(root, scaffold.MemoryBankDir, "progress.md")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	updated := strings.Replace(string(data), "- [ ] Tech stack confirmed", "- [x] Tech stack confirmed", 1)
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))

	assert.Eventually(t, func() bool { return latest() == 2 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-errCh)
}
