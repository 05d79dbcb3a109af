package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/contactstevenwarren/vibe-coding-setup/internal/sys"
	"gopkg.in/yaml.v3"
)

// MarkerFile identifies the root of a scaffolded project.
const MarkerFile = ".vibe-coding.yaml"

// ErrNoProject is returned when no marker is found walking up from a directory.
var ErrNoProject = errors.New("not inside a vibe coding project")

// Marker is the metadata written into every new project.
type Marker struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Slug        string    `yaml:"slug"`
	Description string    `yaml:"description,omitempty"`
	CreatedAt   time.Time `yaml:"created_at"`
	Generator   string    `yaml:"generator"`
	Files       []string  `yaml:"files,omitempty"`
}

// WriteMarker stores m at the root of fs.
func WriteMarker(fs sys.FS, m *Marker) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding marker: %w", err)
	}
	return fs.WriteFile(MarkerFile, data)
}

// ReadMarker loads the marker from dir.
func ReadMarker(dir string) (*Marker, error) {
	data, err := sys.NewLocalFS(dir).ReadFile(MarkerFile)
	if err != nil {
		return nil, err
	}
	var m Marker
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", MarkerFile, err)
	}
	return &m, nil
}

// FindRoot walks up from start until it finds a directory holding a marker.
func FindRoot(start string) (string, *Marker, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", nil, err
	}
	for {
		m, err := ReadMarker(dir)
		if err == nil {
			return dir, m, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", nil, err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, fmt.Errorf("%w (searched up from %s)", ErrNoProject, start)
		}
		dir = parent
	}
}
