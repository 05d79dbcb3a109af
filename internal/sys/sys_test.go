package sys

import (
	"testing"
)

func TestMonitor_GetSnapshot(t *testing.T) {
	m := NewMonitor()
	snapshot, err := m.GetSnapshot()
	if err != nil {
		t.Fatalf("Failed to get snapshot: %v", err)
	}

	if snapshot.CPUUsage < 0 || snapshot.CPUUsage > 100 {
		t.Errorf("Invalid CPU usage: %f", snapshot.CPUUsage)
	}

	if snapshot.MemoryUsage < 0 || snapshot.MemoryUsage > 100 {
		t.Errorf("Invalid Memory usage: %f", snapshot.MemoryUsage)
	}
}

func TestMonitor_DiskSpace(t *testing.T) {
	m := NewMonitor()
	ds, err := m.DiskSpace(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to get disk space: %v", err)
	}
	if ds.Total == 0 {
		t.Error("expected non-zero disk total")
	}
	if ds.Free > ds.Total {
		t.Errorf("free %d exceeds total %d", ds.Free, ds.Total)
	}
}
