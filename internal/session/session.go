// Package session holds the usage table loaded for the running dashboard.
package session

import (
	"slices"
	"sync"

	"github.com/samber/lo"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

// Options are the distinct filter values present in the loaded table.
type Options struct {
	Partners []string
	Brands   []string
}

// Session owns the single loaded table and the active filter. The table is
// only ever replaced wholesale.
type Session struct {
	mu     sync.RWMutex
	table  *models.UsageTable
	filter models.Filter
}

// New returns an empty session.
func New() *Session {
	return &Session{}
}

// Replace swaps in a newly fetched table and resets the filter to all
// values.
func (s *Session) Replace(table *models.UsageTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = table
	s.filter = models.Filter{}
}

// Table returns the loaded table, or nil.
func (s *Session) Table() *models.UsageTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Loaded reports whether a table is held.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table != nil
}

// Clear drops the loaded table.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = nil
	s.filter = models.Filter{}
}

// SetFilter replaces the active filter.
func (s *Session) SetFilter(f models.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = models.Filter{
		Partners: cloneSet(f.Partners),
		Brands:   cloneSet(f.Brands),
	}
}

// Filter returns a copy of the active filter.
func (s *Session) Filter() models.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Filter{
		Partners: cloneSet(s.filter.Partners),
		Brands:   cloneSet(s.filter.Brands),
	}
}

// cloneSet keeps the nil/empty distinction of a filter set.
func cloneSet(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

// Options lists the sorted distinct partners and brands of the table.
func (s *Session) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return optionsOf(s.table)
}

// View is a consistent copy of the session state taken under one lock.
type View struct {
	Table   *models.UsageTable
	Filter  models.Filter
	Options Options
}

// View returns the table, filter and options as they stood at one instant.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{
		Table: s.table,
		Filter: models.Filter{
			Partners: cloneSet(s.filter.Partners),
			Brands:   cloneSet(s.filter.Brands),
		},
		Options: optionsOf(s.table),
	}
}

func optionsOf(table *models.UsageTable) Options {
	if table == nil {
		return Options{}
	}
	partners := lo.Uniq(lo.Map(table.Records, func(r models.UsageRecord, _ int) string { return r.Partner }))
	brands := lo.Uniq(lo.Map(table.Records, func(r models.UsageRecord, _ int) string { return r.Brand }))
	slices.Sort(partners)
	slices.Sort(brands)
	return Options{Partners: partners, Brands: brands}
}
