// Package testutil provides shared test helpers and gateway fakes.
package testutil

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/centavo-app/centavo/internal/gateway"
	"github.com/centavo-app/centavo/internal/models"
)

// TestCSV creates a CSV gateway on a temporary file that is cleaned up with
// the test.
func TestCSV(t *testing.T) *gateway.CSV {
	t.Helper()
	gw, err := gateway.NewCSV(filepath.Join(t.TempDir(), "data.csv"))
	if err != nil {
		t.Fatal(err)
	}
	return gw
}

// MemoryGateway is an in-memory Provider with failure injection, used to test
// fail-open loading and persistence failure isolation.
type MemoryGateway struct {
	mu      sync.Mutex
	set     models.RecordSet
	saves   int
	LoadErr error
	SaveErr error
}

// Load returns the stored set or the injected load error.
func (m *MemoryGateway) Load() (models.RecordSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.set.Clone(), nil
}

// Save stores the set or returns the injected save error. Successful and
// failed attempts both count toward Saves.
func (m *MemoryGateway) Save(set models.RecordSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.set = set.Clone()
	return nil
}

// Saves returns how many Save attempts were made.
func (m *MemoryGateway) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Saved returns the last successfully saved set.
func (m *MemoryGateway) Saved() models.RecordSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Clone()
}

// SetSaveErr swaps the injected save error.
func (m *MemoryGateway) SetSaveErr(err error) {
	m.mu.Lock()
	m.SaveErr = err
	m.mu.Unlock()
}

var _ gateway.Provider = (*MemoryGateway)(nil)
