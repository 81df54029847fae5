// Package memory serves period data from an in-process table, seeded from
// the embedded fixture file or a JSON file on disk.
package memory

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"finboard/internal/core"
)

//go:embed fixtures/periods.json
var fixtures embed.FS

const fixtureFile = "periods.json"

type Store struct {
	mu      sync.RWMutex
	records map[core.PeriodKey]core.PeriodRecord
}

// New validates records and builds a store. Every kind must have its
// default period, since lookups fall back to it.
func New(records []core.PeriodRecord) (*Store, error) {
	s := &Store{records: make(map[core.PeriodKey]core.PeriodRecord, len(records))}
	for i, r := range records {
		r.Key = core.NewPeriodKey(r.Key.Kind, r.Key.Label, r.Key.Year)
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.Key, err)
		}
		s.records[r.Key] = r
	}
	for _, k := range core.Kinds() {
		if _, ok := s.records[core.DefaultKey(k)]; !ok {
			return nil, fmt.Errorf("missing default period %s", core.DefaultKey(k))
		}
	}
	return s, nil
}

// NewDefault loads the embedded fixture table.
func NewDefault() (*Store, error) {
	data, err := fixtures.ReadFile("fixtures/" + fixtureFile)
	if err != nil {
		return nil, fmt.Errorf("read embedded fixtures: %w", err)
	}
	return newFromJSON(data)
}

// NewFromFile loads records from a JSON array of period records.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures %s: %w", path, err)
	}
	return newFromJSON(data)
}

// NewFromDir uses dir/periods.json when present and the embedded table
// otherwise.
func NewFromDir(dir string) (*Store, error) {
	if dir != "" {
		path := filepath.Join(dir, fixtureFile)
		if _, err := os.Stat(path); err == nil {
			return NewFromFile(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return NewDefault()
}

// DefaultRecords returns the embedded fixture records, used to seed SQL
// backends.
func DefaultRecords() ([]core.PeriodRecord, error) {
	data, err := fixtures.ReadFile("fixtures/" + fixtureFile)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(data)
}

// DecodeRecords parses a JSON fixture document.
func DecodeRecords(data []byte) ([]core.PeriodRecord, error) {
	var records []core.PeriodRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return records, nil
}

func newFromJSON(data []byte) (*Store, error) {
	records, err := DecodeRecords(data)
	if err != nil {
		return nil, err
	}
	return New(records)
}

func (s *Store) lookup(key core.PeriodKey) (core.PeriodRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[key]
	if !ok {
		return core.PeriodRecord{}, fmt.Errorf("%w: %s", core.ErrPeriodNotFound, key)
	}
	return r, nil
}

func (s *Store) ReadChartData(_ context.Context, key core.PeriodKey) (core.ChartDataset, error) {
	r, err := s.lookup(key)
	return r.Chart, err
}

func (s *Store) ReadStatsSummary(_ context.Context, key core.PeriodKey) (core.StatsSummary, error) {
	r, err := s.lookup(key)
	return r.Stats, err
}

func (s *Store) ReadBreakdowns(_ context.Context, key core.PeriodKey) (core.Breakdown, core.Breakdown, error) {
	r, err := s.lookup(key)
	return r.Expenses, r.PaymentMethods, err
}

// ListPeriods returns every stored key in key order.
func (s *Store) ListPeriods(_ context.Context) ([]core.PeriodKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]core.PeriodKey, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	return keys, nil
}

// WritePeriod inserts or replaces a record.
func (s *Store) WritePeriod(_ context.Context, r core.PeriodRecord) error {
	r.Key = core.NewPeriodKey(r.Key.Kind, r.Key.Label, r.Key.Year)
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.Key] = r
	return nil
}
