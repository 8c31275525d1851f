package report

import (
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/phoenix-cli/internal/model"
)

// ErrNoReport is returned when an export is requested before any scan, or
// for a company other than the one most recently scanned.
var ErrNoReport = eris.New("report: no report available")

// Store holds the most recent scan report for follow-up export. Single slot,
// last write wins; a later scan invalidates the previous report.
type Store struct {
	mu   sync.RWMutex
	last *model.Report
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Put replaces the stored report.
func (s *Store) Put(report *model.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = report
}

// Get returns the stored report if it matches the requested company number.
func (s *Store) Get(companyNumber string) (*model.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return nil, eris.Wrap(ErrNoReport, "run a scan first")
	}
	if s.last.Company.CompanyNumber != companyNumber {
		return nil, eris.Wrap(ErrNoReport, "report mismatch, run a new scan")
	}
	return s.last, nil
}
