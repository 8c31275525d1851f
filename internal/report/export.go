// Package report renders scan reports for download and keeps the most
// recent report available for export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/phoenix-cli/internal/model"
)

// WriteCSV renders the report as a flat sectioned CSV document.
func WriteCSV(w io.Writer, report *model.Report) error {
	cw := csv.NewWriter(w)
	for _, row := range rows(report) {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "report: flush csv")
	}
	return nil
}

// WriteXLSX renders the report as a single-sheet XLSX workbook with the same
// sections as the CSV export.
func WriteXLSX(w io.Writer, report *model.Report) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Phoenix Scan Report")
	if err != nil {
		return eris.Wrap(err, "report: add xlsx sheet")
	}

	for _, row := range rows(report) {
		xr := sheet.AddRow()
		for _, value := range row {
			cell := xr.AddCell()
			cell.Value = value
		}
	}

	if err := file.Write(w); err != nil {
		return eris.Wrap(err, "report: write xlsx")
	}
	return nil
}

// rows flattens the report into tabular rows. Section order is fixed:
// company info, phoenix verdict, risk summary, indicators, officers,
// similar companies, charges, PSC, flags.
func rows(report *model.Report) [][]string {
	var out [][]string
	add := func(cells ...string) {
		out = append(out, cells)
	}

	add("PHOENIX COMPANY SCAN REPORT")
	add("Generated:", report.ScannedAt.Format(time.DateTime))
	add()

	company := report.Company
	add("COMPANY INFORMATION")
	add("Company Name", valueOr(company.CompanyName))
	add("Company Number", valueOr(company.CompanyNumber))
	add("Status", valueOr(company.CompanyStatus))
	add("Type", valueOr(company.Type))
	add("Incorporated", valueOr(company.DateOfCreation))
	if company.DateOfCessation != "" {
		add("Dissolved", company.DateOfCessation)
	}
	add("Address", company.AddressString())
	add()

	a := report.Assessment
	add("PHOENIX DETECTION RESULTS")
	add("Phoenix Status", yesNo(a.IsPhoenix))
	add("Phoenix Confidence", fmt.Sprintf("%d%%", a.PhoenixConfidence))
	add("Risk Score", fmt.Sprint(a.RiskScore))
	add("Risk Level", string(a.RiskLevel))
	add()

	add("Phoenix Detection Reasons")
	for _, reason := range a.PhoenixReasons {
		add("", reason)
	}
	add()

	if len(a.Indicators) > 0 {
		add("PHOENIX ACTIVITY INDICATORS")
		add("Severity", "Type", "Description")
		for _, ind := range a.Indicators {
			add(
				strings.ToUpper(string(ind.Severity)),
				strings.ReplaceAll(ind.Type, "_", " "),
				ind.Description,
			)
		}
		add()
	}

	add("DIRECTORS & OFFICERS")
	add("Name", "Role", "Appointed", "Resigned", "Dissolved Links", "Liquidation Links", "Recent Formations")
	for _, officer := range report.Officers {
		add(
			officer.Name,
			officer.Role,
			officer.AppointedOn,
			officer.ResignedOn,
			fmt.Sprint(officer.DissolvedLinks),
			fmt.Sprint(officer.LiquidationLinks),
			fmt.Sprint(officer.RecentFormations),
		)
	}
	add()

	if len(report.SimilarCompanies) > 0 {
		add("SIMILAR COMPANIES")
		add("Company Name", "Number", "Status", "Incorporated", "Dissolved", "Found By")
		for _, sim := range report.SimilarCompanies {
			add(
				valueOr(sim.Title),
				valueOr(sim.CompanyNumber),
				valueOr(sim.CompanyStatus),
				valueOr(sim.DateOfCreation),
				valueOr(sim.DateOfCessation),
				string(sim.FoundBy),
			)
		}
		add()
	}

	if len(report.Charges) > 0 {
		add("CHARGES & MORTGAGES")
		add("Status", "Created", "Description")
		for _, charge := range report.Charges {
			add(
				valueOr(charge.Status),
				valueOr(charge.CreatedOn),
				valueOr(charge.Classification.Description),
			)
		}
		add()
	}

	if len(report.PSC) > 0 {
		add("PERSONS WITH SIGNIFICANT CONTROL")
		add("Name", "Nature of Control", "Notified On")
		for _, psc := range report.PSC {
			natures := "N/A"
			if len(psc.NaturesOfControl) > 0 {
				natures = strings.Join(psc.NaturesOfControl, ", ")
			}
			add(valueOr(psc.Name), natures, valueOr(psc.NotifiedOn))
		}
		add()
	}

	if report.Flags.Len() > 0 {
		add("ALL FLAGS")
		for _, flag := range report.Flags.All() {
			add("", flag)
		}
	}

	return out
}

func valueOr(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
