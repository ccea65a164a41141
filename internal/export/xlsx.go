// Package export writes stored leads to spreadsheet files for manual
// review and CRM import.
package export

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/liac-group/recruit-cli/internal/model"
)

var leadHeader = []string{
	"Name", "Title", "Company", "Email", "Job Title", "Job URL", "Score", "Created",
}

// WriteLeadsXLSX writes leads to an XLSX workbook at path, one row per
// lead under a header row.
func WriteLeadsXLSX(path string, leads []model.Lead) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range leadHeader {
		header.AddCell().SetString(h)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.Name)
		row.AddCell().SetString(l.Title)
		row.AddCell().SetString(l.Company)
		row.AddCell().SetString(l.Email)
		row.AddCell().SetString(l.JobTitle)
		row.AddCell().SetString(l.JobURL)
		row.AddCell().SetString(strconv.FormatFloat(l.Score, 'f', -1, 64))
		row.AddCell().SetString(l.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}

	return eris.Wrap(f.Save(path), "export: save workbook")
}
