// Package memory is an in-process sheets.Mirror used when no spreadsheet is
// configured and in tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"homefin/internal/sheets"
)

var _ sheets.Mirror = (*Mirror)(nil)

type table struct {
	header []string
	rows   map[string]sheets.Row
}

type Mirror struct {
	mu     sync.Mutex
	tables map[string]*table
	writes int
}

func New() *Mirror {
	return &Mirror{tables: make(map[string]*table)}
}

func (m *Mirror) tableFor(tab sheets.Tab) (*table, error) {
	if tab.Name == "" {
		return nil, errors.New("tab name is empty")
	}
	t, ok := m.tables[tab.Name]
	if !ok {
		t = &table{rows: make(map[string]sheets.Row)}
		m.tables[tab.Name] = t
	}
	t.header = append([]string(nil), tab.Header...)
	return t, nil
}

func (m *Mirror) UpsertRow(_ context.Context, tab sheets.Tab, row sheets.Row) error {
	if row.Key == "" {
		return errors.New("row key is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.tableFor(tab)
	if err != nil {
		return err
	}
	t.rows[row.Key] = cloneRow(row)
	m.writes++
	return nil
}

func (m *Mirror) DeleteRow(_ context.Context, tab sheets.Tab, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.tableFor(tab)
	if err != nil {
		return err
	}
	delete(t.rows, key)
	m.writes++
	return nil
}

func (m *Mirror) ReplaceAll(_ context.Context, tab sheets.Tab, rows []sheets.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.tableFor(tab)
	if err != nil {
		return err
	}
	t.rows = make(map[string]sheets.Row, len(rows))
	for _, r := range rows {
		t.rows[r.Key] = cloneRow(r)
	}
	m.writes++
	return nil
}

// Rows returns the rows of a tab ordered by key.
func (m *Mirror) Rows(tabName string) []sheets.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[tabName]
	if !ok {
		return nil
	}
	out := make([]sheets.Row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, cloneRow(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Row looks up one row.
func (m *Mirror) Row(tabName, key string) (sheets.Row, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[tabName]
	if !ok {
		return sheets.Row{}, false
	}
	r, ok := t.rows[key]
	return cloneRow(r), ok
}

// Header returns the last header written to a tab.
func (m *Mirror) Header(tabName string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[tabName]; ok {
		return append([]string(nil), t.header...)
	}
	return nil
}

// Writes counts mutating calls.
func (m *Mirror) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func cloneRow(r sheets.Row) sheets.Row {
	r.Values = append(r.Values[:0:0], r.Values...)
	return r
}
