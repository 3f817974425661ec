package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// MemoryTable is a thread-safe in-memory Table, keyed by spreadsheet id and
// range. Both insert modes append after the last row, since ranges here
// have no neighbouring cells to overwrite.
type MemoryTable struct {
	mu     sync.RWMutex
	ranges map[string][]Row // spreadsheetID/range → rows
}

// NewMemoryTable creates an empty MemoryTable.
func NewMemoryTable() *MemoryTable {
	return &MemoryTable{
		ranges: make(map[string][]Row),
	}
}

func memoryKey(spreadsheetID string, rng Range) string {
	return spreadsheetID + "/" + string(rng)
}

// Get returns a copy of every row in the range. An unknown range is empty.
func (m *MemoryTable) Get(_ context.Context, spreadsheetID string, rng Range) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.ranges[memoryKey(spreadsheetID, rng)]
	result := make([]Row, len(rows))
	for i, r := range rows {
		result[i] = append(Row(nil), r...)
	}
	return result, nil
}

// Append adds rows to the end of the range.
func (m *MemoryTable) Append(_ context.Context, spreadsheetID string, rng Range, rows []Row, _ InsertMode) (*AppendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(spreadsheetID, rng)
	for _, r := range rows {
		m.ranges[key] = append(m.ranges[key], append(Row(nil), r...))
	}
	return &AppendResult{
		UpdatedRange: string(rng),
		UpdatedRows:  int64(len(rows)),
	}, nil
}

// Clear empties the range.
func (m *MemoryTable) Clear(_ context.Context, spreadsheetID string, rng Range) (*ClearResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.ranges, memoryKey(spreadsheetID, rng))
	return &ClearResult{ClearedRange: string(rng)}, nil
}

// Seed replaces the contents of a range.
func (m *MemoryTable) Seed(spreadsheetID string, rng Range, rows []Row) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]Row, len(rows))
	for i, r := range rows {
		copied[i] = append(Row(nil), r...)
	}
	m.ranges[memoryKey(spreadsheetID, rng)] = copied
}

// LoadSeed reads a JSON object mapping range names to arrays of rows and
// seeds each range with it.
func (m *MemoryTable) LoadSeed(spreadsheetID string, r io.Reader) error {
	var seed map[string][]Row
	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for rng, rows := range seed {
		m.Seed(spreadsheetID, Range(rng), rows)
	}
	return nil
}
