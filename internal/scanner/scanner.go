// Package scanner orchestrates registry calls to assemble and score a full
// investigation report for a target company.
package scanner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/phoenix-cli/internal/model"
	"github.com/sells-group/phoenix-cli/internal/scorer"
	"github.com/sells-group/phoenix-cli/pkg/companieshouse"
)

// ErrEmptyCompanyNumber is returned when a scan is requested without a target.
var ErrEmptyCompanyNumber = eris.New("scanner: company number is required")

// DefaultRecentFormationDays is the window for counting an officer's linked
// companies as recently formed.
const DefaultRecentFormationDays = 730

const dateLayout = "2006-01-02"

// Option configures a Scanner.
type Option func(*Scanner)

// WithRecentFormationDays overrides the recent-formation window.
func WithRecentFormationDays(days int) Option {
	return func(s *Scanner) {
		s.recentDays = days
	}
}

// WithClock overrides the scan clock (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) {
		s.now = now
	}
}

// Scanner builds investigation reports from the registry.
type Scanner struct {
	client     companieshouse.Client
	recentDays int
	now        func() time.Time
}

// New creates a Scanner over the given registry client.
func New(client companieshouse.Client, opts ...Option) *Scanner {
	s := &Scanner{
		client:     client,
		recentDays: DefaultRecentFormationDays,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan fetches the company profile and all secondary records, folds officer
// histories into summary counters, gathers similar-company candidates, and
// scores the result. A missing or failed profile aborts the scan; failures
// on any secondary call degrade that section to empty.
func (s *Scanner) Scan(ctx context.Context, companyNumber string) (*model.Report, error) {
	companyNumber = strings.TrimSpace(companyNumber)
	if companyNumber == "" {
		return nil, ErrEmptyCompanyNumber
	}

	scannedAt := s.now()
	// One cutoff per scan so a long officer loop doesn't drift the window.
	recentCutoff := scannedAt.AddDate(0, 0, -s.recentDays)

	company, err := s.client.GetCompany(ctx, companyNumber)
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("scanner: fetch company %s", companyNumber))
	}

	report := &model.Report{
		ScanID:           uuid.NewString(),
		ScannedAt:        scannedAt,
		Company:          *company,
		Officers:         []model.Officer{},
		FilingHistory:    []companieshouse.Filing{},
		PSC:              []companieshouse.PSC{},
		Charges:          []companieshouse.Charge{},
		SimilarCompanies: []model.SimilarCompany{},
	}

	s.collectOfficers(ctx, report, recentCutoff)
	s.collectRecords(ctx, report)
	s.collectSimilar(ctx, report)

	report.Assessment = scorer.Score(report)

	zap.L().Info("scanner: scan complete",
		zap.String("company_number", companyNumber),
		zap.String("scan_id", report.ScanID),
		zap.Int("risk_score", report.Assessment.RiskScore),
		zap.String("risk_level", string(report.Assessment.RiskLevel)),
		zap.Bool("is_phoenix", report.Assessment.IsPhoenix),
	)

	return report, nil
}

// collectOfficers fetches the officer list and summarizes each officer's
// linked companies via a name search.
func (s *Scanner) collectOfficers(ctx context.Context, report *model.Report, recentCutoff time.Time) {
	list, err := s.client.GetOfficers(ctx, report.Company.CompanyNumber)
	if err != nil {
		zap.L().Warn("scanner: officers fetch failed, continuing without",
			zap.String("company_number", report.Company.CompanyNumber),
			zap.Error(err),
		)
		return
	}

	for _, item := range list.Items {
		report.Officers = append(report.Officers, s.summarizeOfficer(ctx, item, recentCutoff, &report.Flags))
	}
}

// summarizeOfficer folds one officer's name-search hits into the derived
// counters. A failed search yields a summary with zero linked companies.
func (s *Scanner) summarizeOfficer(ctx context.Context, item companieshouse.OfficerItem, recentCutoff time.Time, flags *model.FlagSet) model.Officer {
	officer := model.Officer{
		Name:            item.Name,
		Role:            item.OfficerRole,
		AppointedOn:     item.AppointedOn,
		ResignedOn:      item.ResignedOn,
		LinkedCompanies: []model.LinkedCompany{},
	}

	search, err := s.client.SearchCompanies(ctx, item.Name)
	if err != nil {
		zap.L().Warn("scanner: officer name search failed",
			zap.String("officer", item.Name),
			zap.Error(err),
		)
		return officer
	}

	for _, hit := range search.Items {
		officer.LinkedCompanies = append(officer.LinkedCompanies, model.LinkedCompany{
			CompanyNumber:  hit.CompanyNumber,
			Title:          hit.Title,
			Status:         hit.CompanyStatus,
			DateOfCreation: hit.DateOfCreation,
		})

		if companieshouse.SuspiciousStatus(hit.CompanyStatus) {
			if hit.CompanyStatus == companieshouse.StatusDissolved {
				officer.DissolvedLinks++
			}
			if hit.CompanyStatus == companieshouse.StatusLiquidation ||
				hit.CompanyStatus == companieshouse.StatusInsolvencyProceedings {
				officer.LiquidationLinks++
			}
			flags.Add(fmt.Sprintf("Director %s linked to %s (%s)", item.Name, hit.Title, hit.CompanyStatus))
		}

		if hit.DateOfCreation != "" {
			if created, perr := time.Parse(dateLayout, hit.DateOfCreation); perr == nil && created.After(recentCutoff) {
				officer.RecentFormations++
			}
		}
	}

	return officer
}

// collectRecords fetches filing history, PSC, charges and insolvency
// independently. Each failure degrades its own section only.
func (s *Scanner) collectRecords(ctx context.Context, report *model.Report) {
	number := report.Company.CompanyNumber

	if filings, err := s.client.GetFilingHistory(ctx, number); err != nil {
		zap.L().Warn("scanner: filing history fetch failed", zap.String("company_number", number), zap.Error(err))
	} else {
		report.FilingHistory = filings.Items
	}

	if psc, err := s.client.GetPSC(ctx, number); err != nil {
		zap.L().Warn("scanner: psc fetch failed", zap.String("company_number", number), zap.Error(err))
	} else {
		report.PSC = psc.Items
	}

	if charges, err := s.client.GetCharges(ctx, number); err != nil {
		zap.L().Warn("scanner: charges fetch failed", zap.String("company_number", number), zap.Error(err))
	} else {
		report.Charges = charges.Items
	}

	// Most companies have no insolvency record; 404 here is the normal case.
	if insolvency, err := s.client.GetInsolvency(ctx, number); err != nil {
		if !eris.Is(err, companieshouse.ErrNotFound) {
			zap.L().Warn("scanner: insolvency fetch failed", zap.String("company_number", number), zap.Error(err))
		}
	} else {
		report.Insolvency = insolvency
	}
}

// collectSimilar runs the name search, then the address search, deduplicating
// address hits against numbers already collected.
func (s *Scanner) collectSimilar(ctx context.Context, report *model.Report) {
	target := report.Company.CompanyNumber

	if name := report.Company.CompanyName; name != "" {
		if search, err := s.client.SearchCompanies(ctx, name); err != nil {
			zap.L().Warn("scanner: name similarity search failed", zap.String("company_number", target), zap.Error(err))
		} else {
			for _, hit := range search.Items {
				if hit.CompanyNumber == target {
					continue
				}
				report.SimilarCompanies = append(report.SimilarCompanies, newSimilar(hit, model.FoundByName))
			}
		}
	}

	address := report.Company.AddressString()
	if address == "" {
		return
	}

	search, err := s.client.SearchCompanies(ctx, address)
	if err != nil {
		zap.L().Warn("scanner: address similarity search failed", zap.String("company_number", target), zap.Error(err))
		return
	}

	seen := make(map[string]struct{}, len(report.SimilarCompanies))
	for _, sc := range report.SimilarCompanies {
		seen[sc.CompanyNumber] = struct{}{}
	}

	for _, hit := range search.Items {
		if hit.CompanyNumber == target {
			continue
		}
		if _, ok := seen[hit.CompanyNumber]; ok {
			continue
		}
		report.SimilarCompanies = append(report.SimilarCompanies, newSimilar(hit, model.FoundByAddress))
	}
}

func newSimilar(hit companieshouse.SearchItem, foundBy model.FoundBy) model.SimilarCompany {
	return model.SimilarCompany{
		Title:           hit.Title,
		CompanyNumber:   hit.CompanyNumber,
		CompanyStatus:   hit.CompanyStatus,
		DateOfCreation:  hit.DateOfCreation,
		DateOfCessation: hit.DateOfCessation,
		AddressSnippet:  hit.AddressSnippet,
		FoundBy:         foundBy,
	}
}
