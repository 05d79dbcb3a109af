package sys

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot represents the current system state
type Snapshot struct {
	CPUUsage    float64
	MemoryUsage float64
}

// DiskSpace describes the filesystem holding a path.
type DiskSpace struct {
	Path        string
	Total       uint64
	Free        uint64
	UsedPercent float64
}

// Monitor provides system awareness
type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

// GetSnapshot returns a current snapshot of system resources
func (m *Monitor) GetSnapshot() (Snapshot, error) {
	c, err := cpu.Percent(0, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("getting cpu percent: %w", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return Snapshot{}, fmt.Errorf("getting virtual memory: %w", err)
	}

	s := Snapshot{MemoryUsage: vm.UsedPercent}
	if len(c) > 0 {
		s.CPUUsage = c[0]
	}
	return s, nil
}

// DiskSpace reports capacity of the filesystem that holds path.
func (m *Monitor) DiskSpace(path string) (DiskSpace, error) {
	u, err := disk.Usage(path)
	if err != nil {
		return DiskSpace{}, fmt.Errorf("getting disk usage for %s: %w", path, err)
	}
	return DiskSpace{
		Path:        path,
		Total:       u.Total,
		Free:        u.Free,
		UsedPercent: u.UsedPercent,
	}, nil
}
