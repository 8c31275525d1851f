// Package scorer implements the phoenix-activity risk rules over an
// investigation report. Scoring is pure: no I/O, no clock, deterministic
// for a given report.
package scorer

import (
	"fmt"
	"strings"

	"github.com/sells-group/phoenix-cli/internal/model"
	"github.com/sells-group/phoenix-cli/internal/similarity"
	"github.com/sells-group/phoenix-cli/pkg/companieshouse"
)

// Rule score contributions. The rule set is fixed so assessments stay
// auditable across runs.
const (
	deltaSuspiciousStatus    = 30
	deltaHighNameSimilarity  = 25
	deltaNameSimilarity      = 15
	deltaNameRecyclingStrong = 30
	deltaNameRecyclingWeak   = 20
	deltaSerialDissolutions  = 30
	deltaMultipleDissolved   = 20
	deltaLiquidationPattern  = 40
	deltaLiquidationHistory  = 20
	deltaPhoenixDirector     = 25
	deltaAddressStrong       = 35
	deltaAddressWeak         = 25
	deltaOutstandingCharges  = 10
	deltaInsolvencyHistory   = 40
)

// Similarity thresholds, on the 0-100 ratio scale.
const (
	highNameSimilarity   = 85
	mediumNameSimilarity = 70
	addressSimilarity    = 85
)

// Phoenix confidence contributions. The verdict latches once accumulated
// confidence reaches verdictThreshold and is never revised downward.
const (
	verdictThreshold       = 60
	confMultiplePhoenixDir = 40
	confSinglePhoenixDir   = 25
	confLiquidationDirs    = 35
	confNameRecycleStrong  = 30
	confNameRecycleWeak    = 20
	confInsolvencyPhoenix  = 30
	confAddressNameCombo   = 25
	confSerialNameCombo    = 20
)

const maxScore = 100

// noPatternReason is the default reason when no phoenix rule fired.
const noPatternReason = "No clear phoenix patterns detected based on name, director, or address analysis"

// Score evaluates the risk rules against a report and returns the assessment.
// Rules are additive and evaluated in a fixed order; the same candidate may
// contribute to both a per-candidate and an aggregate indicator.
func Score(report *model.Report) model.RiskAssessment {
	acc := &accumulator{}

	scoreCompanyStatus(report, acc)
	nameRecycled := scoreNameSimilarity(report, acc)
	phoenixDirs, serialDirs := scoreOfficers(report, acc)
	addressMatches := scoreAddressRecycling(report, acc)
	scoreCharges(report, acc)
	scoreInsolvency(report, acc)

	a := model.RiskAssessment{
		RiskScore:  min(acc.score, maxScore),
		Indicators: acc.indicators,
	}
	a.RiskLevel = levelFor(a.RiskScore)

	applyPhoenixVerdict(&a, report, verdictInputs{
		phoenixDirectors: phoenixDirs,
		serialDirectors:  serialDirs,
		nameRecycled:     nameRecycled,
		addressMatches:   addressMatches,
	})

	return a
}

// levelFor maps a clamped risk score to its tier.
func levelFor(score int) model.RiskLevel {
	switch {
	case score >= 70:
		return model.RiskLevelCritical
	case score >= 50:
		return model.RiskLevelHigh
	case score >= 30:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelLow
	}
}

// accumulator collects score deltas and indicators in evaluation order.
type accumulator struct {
	score      int
	indicators []model.Indicator
}

func (a *accumulator) add(delta int, typ string, sev model.Severity, desc string) {
	a.score += delta
	a.indicators = append(a.indicators, model.Indicator{
		Type:        typ,
		Severity:    sev,
		Description: desc,
	})
}

func scoreCompanyStatus(report *model.Report, acc *accumulator) {
	status := report.Company.CompanyStatus
	if companieshouse.SuspiciousStatus(status) {
		acc.add(deltaSuspiciousStatus, "company_status", model.SeverityHigh,
			fmt.Sprintf("Company status is: %s", status))
	}
}

// dissolvedLike covers the statuses eligible for name-recycling matches.
func dissolvedLike(status string) bool {
	switch status {
	case companieshouse.StatusDissolved, companieshouse.StatusLiquidation,
		companieshouse.StatusInsolvencyProceedings:
		return true
	}
	return false
}

// scoreNameSimilarity evaluates the per-candidate name rules and the
// aggregate name-recycling rule. Returns the count of dissolved-like
// candidates matched at >= 70% similarity.
func scoreNameSimilarity(report *model.Report, acc *accumulator) int {
	companyName := strings.ToLower(report.Company.CompanyName)
	recycled := 0

	for _, sim := range report.SimilarCompanies {
		if !dissolvedLike(sim.CompanyStatus) {
			continue
		}
		ratio := similarity.Percent(companyName, strings.ToLower(sim.Title))
		if ratio < mediumNameSimilarity {
			continue
		}
		recycled++

		if ratio >= highNameSimilarity {
			acc.add(deltaHighNameSimilarity, "high_name_similarity", model.SeverityHigh,
				fmt.Sprintf("Very similar name to dissolved company: %s (%s) - %.0f%% match",
					sim.Title, sim.CompanyNumber, ratio))
		} else {
			acc.add(deltaNameSimilarity, "name_similarity", model.SeverityMedium,
				fmt.Sprintf("Similar name to dissolved company: %s (%s) - %.0f%% match",
					sim.Title, sim.CompanyNumber, ratio))
		}
	}

	if recycled >= 3 {
		acc.add(deltaNameRecyclingStrong, "name_recycling", model.SeverityCritical,
			fmt.Sprintf("%d dissolved companies with similar names found - strong name recycling pattern", recycled))
	} else if recycled == 2 {
		acc.add(deltaNameRecyclingWeak, "name_recycling", model.SeverityHigh,
			fmt.Sprintf("%d dissolved companies with similar names found - possible name recycling", recycled))
	}

	return recycled
}

// scoreOfficers evaluates the director history rules. Returns the counts of
// phoenix-pattern directors and serial-dissolution directors.
func scoreOfficers(report *model.Report, acc *accumulator) (phoenixDirs, serialDirs int) {
	for _, officer := range report.Officers {
		if officer.DissolvedLinks >= 3 {
			serialDirs++
			acc.add(deltaSerialDissolutions, "serial_dissolutions", model.SeverityCritical,
				fmt.Sprintf("%s has %d dissolved companies", officer.Name, officer.DissolvedLinks))
		} else if officer.DissolvedLinks == 2 {
			acc.add(deltaMultipleDissolved, "multiple_dissolutions", model.SeverityHigh,
				fmt.Sprintf("%s has %d dissolved companies", officer.Name, officer.DissolvedLinks))
		}

		if officer.LiquidationLinks >= 2 {
			acc.add(deltaLiquidationPattern, "liquidation_pattern", model.SeverityCritical,
				fmt.Sprintf("%s linked to %d companies in liquidation/insolvency", officer.Name, officer.LiquidationLinks))
		} else if officer.LiquidationLinks == 1 {
			acc.add(deltaLiquidationHistory, "liquidation_history", model.SeverityHigh,
				fmt.Sprintf("%s linked to %d company in liquidation/insolvency", officer.Name, officer.LiquidationLinks))
		}

		if officer.DissolvedLinks >= 1 && officer.RecentFormations >= 1 {
			phoenixDirs++
			acc.add(deltaPhoenixDirector, "phoenix_director_pattern", model.SeverityHigh,
				fmt.Sprintf("%s: %d dissolved companies + %d recent formations (potential phoenix activity)",
					officer.Name, officer.DissolvedLinks, officer.RecentFormations))
		}
	}
	return phoenixDirs, serialDirs
}

// scoreAddressRecycling counts similar-company candidates whose address
// snippet matches the target registered office at > 85% similarity.
// Candidates without a snippet are skipped for this rule only.
func scoreAddressRecycling(report *model.Report, acc *accumulator) int {
	target := strings.ToLower(report.Company.AddressString())
	if target == "" {
		return 0
	}

	matches := 0
	for _, sim := range report.SimilarCompanies {
		if sim.AddressSnippet == "" {
			continue
		}
		if similarity.Percent(target, strings.ToLower(sim.AddressSnippet)) > addressSimilarity {
			matches++
		}
	}

	if matches >= 5 {
		acc.add(deltaAddressStrong, "address_recycling", model.SeverityCritical,
			fmt.Sprintf("%d companies with same/similar addresses - strong address recycling pattern", matches))
	} else if matches >= 3 {
		acc.add(deltaAddressWeak, "address_recycling", model.SeverityHigh,
			fmt.Sprintf("%d companies with same/similar addresses - possible address recycling", matches))
	}

	return matches
}

// scoreCharges adds a flat delta when any charge is outstanding.
func scoreCharges(report *model.Report, acc *accumulator) {
	outstanding := 0
	for _, charge := range report.Charges {
		if charge.Status == "outstanding" {
			outstanding++
		}
	}
	if outstanding > 0 {
		acc.add(deltaOutstandingCharges, "outstanding_charges", model.SeverityMedium,
			fmt.Sprintf("%d outstanding charges/mortgages on company", outstanding))
	}
}

func scoreInsolvency(report *model.Report, acc *accumulator) {
	if report.Insolvency != nil {
		acc.add(deltaInsolvencyHistory, "insolvency_history", model.SeverityCritical,
			"Company has insolvency proceedings on record")
	}
}

// verdictInputs carries the aggregate counts feeding the phoenix verdict.
type verdictInputs struct {
	phoenixDirectors int
	serialDirectors  int
	nameRecycled     int
	addressMatches   int
}

// applyPhoenixVerdict accumulates phoenix confidence from overlapping
// triggers. The verdict latches true the first time confidence reaches the
// threshold and is never re-checked downward.
func applyPhoenixVerdict(a *model.RiskAssessment, report *model.Report, in verdictInputs) {
	confidence := 0
	isPhoenix := false
	var reasons []string

	latch := func() {
		if confidence >= verdictThreshold {
			isPhoenix = true
		}
	}

	if in.phoenixDirectors >= 2 {
		confidence += confMultiplePhoenixDir
		reasons = append(reasons, fmt.Sprintf("%d directors show phoenix patterns (dissolved companies + recent formations)", in.phoenixDirectors))
		latch()
	} else if in.phoenixDirectors == 1 {
		confidence += confSinglePhoenixDir
		reasons = append(reasons, fmt.Sprintf("%d director shows phoenix pattern (dissolved companies + recent formations)", in.phoenixDirectors))
	}

	liquidationDirs := 0
	for _, officer := range report.Officers {
		if officer.LiquidationLinks >= 2 {
			liquidationDirs++
		}
	}
	if liquidationDirs > 0 {
		confidence += confLiquidationDirs
		reasons = append(reasons, fmt.Sprintf("%d director(s) linked to multiple liquidations/insolvencies", liquidationDirs))
		latch()
	}

	if in.nameRecycled >= 3 {
		confidence += confNameRecycleStrong
		reasons = append(reasons, fmt.Sprintf("Name recycling detected: %d similar dissolved companies", in.nameRecycled))
		latch()
	} else if in.nameRecycled == 2 {
		confidence += confNameRecycleWeak
		reasons = append(reasons, fmt.Sprintf("Possible name recycling: %d similar dissolved companies", in.nameRecycled))
	}

	if report.Insolvency != nil && in.phoenixDirectors > 0 {
		confidence += confInsolvencyPhoenix
		reasons = append(reasons, "Insolvency history combined with directors forming new companies")
		latch()
	}

	if in.addressMatches >= 3 && in.nameRecycled >= 2 {
		confidence += confAddressNameCombo
		reasons = append(reasons, "Multiple companies with same address and similar names")
		latch()
	}

	if in.serialDirectors >= 1 && in.nameRecycled >= 2 {
		confidence += confSerialNameCombo
		reasons = append(reasons, fmt.Sprintf("%d serial director(s) with name recycling pattern", in.serialDirectors))
		latch()
	}

	if confidence > maxScore {
		confidence = maxScore
	}
	if len(reasons) == 0 {
		reasons = []string{noPatternReason}
	}

	a.IsPhoenix = isPhoenix
	a.PhoenixConfidence = confidence
	a.PhoenixReasons = reasons
}
