// Package memory is an in-process record store used for development, demos
// and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"homefin/internal/core"
	"homefin/internal/ports"
)

var _ ports.Store = (*Store)(nil)

// Store keeps records in maps guarded by one mutex. Values are cloned on the
// way in and out so callers never share amount maps with the store.
type Store struct {
	mu        sync.RWMutex
	balances  map[core.Period]core.BalanceSnapshot
	incomes   map[core.Period]core.IncomeExpenseRecord
	taxes     map[int]core.TaxReturnSummary
	constants map[int64]core.MetricConstant
	nextID    int64
}

func New() *Store {
	return &Store{
		balances:  make(map[core.Period]core.BalanceSnapshot),
		incomes:   make(map[core.Period]core.IncomeExpenseRecord),
		taxes:     make(map[int]core.TaxReturnSummary),
		constants: make(map[int64]core.MetricConstant),
	}
}

func (s *Store) ListBalanceSnapshots(_ context.Context, f ports.Filter) ([]core.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.BalanceSnapshot, 0, len(s.balances))
	for p, b := range s.balances {
		if f.Matches(p) {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Period.Before(out[i].Period) })
	return out, nil
}

func (s *Store) ListIncomeRecords(_ context.Context, f ports.Filter) ([]core.IncomeExpenseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.IncomeExpenseRecord, 0, len(s.incomes))
	for p, r := range s.incomes {
		if f.Matches(p) {
			out = append(out, r.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[j].Period.Before(out[i].Period) })
	return out, nil
}

func (s *Store) FindBalanceSnapshot(_ context.Context, p core.Period) (core.BalanceSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.balances[p]
	if !ok {
		return core.BalanceSnapshot{}, false, nil
	}
	return b.Clone(), true, nil
}

func (s *Store) FindIncomeRecord(_ context.Context, p core.Period) (core.IncomeExpenseRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.incomes[p]
	if !ok {
		return core.IncomeExpenseRecord{}, false, nil
	}
	return r.Clone(), true, nil
}

func (s *Store) ListDistinctYears(_ context.Context, kind core.Kind) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int]struct{})
	switch kind {
	case core.KindBalance:
		for p := range s.balances {
			seen[p.Year] = struct{}{}
		}
	case core.KindIncome:
		for p := range s.incomes {
			seen[p.Year] = struct{}{}
		}
	case core.KindTax:
		for y := range s.taxes {
			seen[y] = struct{}{}
		}
	default:
		return nil, core.ErrInvalidKind
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// LoadRecordSet copies every monthly record under a single read lock.
func (s *Store) LoadRecordSet(_ context.Context) (core.RecordSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := core.RecordSet{
		Balances: make([]core.BalanceSnapshot, 0, len(s.balances)),
		Incomes:  make([]core.IncomeExpenseRecord, 0, len(s.incomes)),
	}
	for _, b := range s.balances {
		set.Balances = append(set.Balances, b.Clone())
	}
	for _, r := range s.incomes {
		set.Incomes = append(set.Incomes, r.Clone())
	}
	sort.Slice(set.Balances, func(i, j int) bool { return set.Balances[i].Period.Before(set.Balances[j].Period) })
	sort.Slice(set.Incomes, func(i, j int) bool { return set.Incomes[i].Period.Before(set.Incomes[j].Period) })
	return set, nil
}

func (s *Store) ListTaxReturns(_ context.Context) ([]core.TaxReturnSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.TaxReturnSummary, 0, len(s.taxes))
	for _, t := range s.taxes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (s *Store) FindTaxReturn(_ context.Context, year int) (core.TaxReturnSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.taxes[year]
	return t, ok, nil
}

func (s *Store) ListMetricConstants(_ context.Context) ([]core.MetricConstant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.MetricConstant, 0, len(s.constants))
	for _, c := range s.constants {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (s *Store) SaveBalanceSnapshot(_ context.Context, b core.BalanceSnapshot) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[b.Period] = b.Clone()
	return nil
}

func (s *Store) SaveIncomeRecord(_ context.Context, r core.IncomeExpenseRecord) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes[r.Period] = r.Clone()
	return nil
}

func (s *Store) SaveTaxReturn(_ context.Context, t core.TaxReturnSummary) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taxes[t.Year] = t
	return nil
}

// SaveMetricConstant inserts when c.ID is zero, otherwise updates.
func (s *Store) SaveMetricConstant(_ context.Context, c core.MetricConstant) (core.MetricConstant, error) {
	if err := c.Validate(); err != nil {
		return core.MetricConstant{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	} else if _, ok := s.constants[c.ID]; !ok {
		return core.MetricConstant{}, ports.ErrNotFound
	}
	s.constants[c.ID] = c
	return c, nil
}

func (s *Store) DeleteBalanceSnapshot(_ context.Context, p core.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.balances[p]; !ok {
		return ports.ErrNotFound
	}
	delete(s.balances, p)
	return nil
}

func (s *Store) DeleteIncomeRecord(_ context.Context, p core.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.incomes[p]; !ok {
		return ports.ErrNotFound
	}
	delete(s.incomes, p)
	return nil
}

func (s *Store) DeleteTaxReturn(_ context.Context, year int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.taxes[year]; !ok {
		return ports.ErrNotFound
	}
	delete(s.taxes, year)
	return nil
}

func (s *Store) DeleteMetricConstant(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.constants[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.constants, id)
	return nil
}
