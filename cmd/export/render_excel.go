package export

// Copyright (C) 2019-2025 Arm Limited.
// SPDX-License-Identifier: MIT

import (
	"bufio"
	"bytes"
	"fmt"

	"lgc/internal/database"
	"lgc/internal/equation"
	"lgc/internal/specdb"

	"github.com/xuri/excelize/v2"
)

const xlsxSheetName = "Counters"

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

var xlsxHeaders = []string{"Section", "Group", "Counter", "Machine Name", "Units", "Usage", "Audience", "Source", "Equation", "Description"}

// createXlsxExport renders the presentation-ordered counter listing for
// one product as a single-sheet spreadsheet, one row per counter.
func createXlsxExport(db *database.CounterDatabase, gpu string,
	maxVisibility specdb.Visibility, derived bool) (out []byte, err error) {
	semantic, err := db.SemanticViewFor(gpu)
	if err != nil {
		return nil, err
	}
	semantic = semantic.Filter(maxVisibility, derived)

	f := excelize.NewFile()
	_ = f.SetSheetName("Sheet1", xlsxSheetName)
	_ = f.SetColWidth(xlsxSheetName, "A", "B", 25)
	_ = f.SetColWidth(xlsxSheetName, "C", "D", 35)
	_ = f.SetColWidth(xlsxSheetName, "E", "G", 15)
	_ = f.SetColWidth(xlsxSheetName, "H", "J", 45)
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	row := 1
	for col, header := range xlsxHeaders {
		_ = f.SetCellValue(xlsxSheetName, cellName(col+1, row), header)
		_ = f.SetCellStyle(xlsxSheetName, cellName(col+1, row), cellName(col+1, row), headerStyle)
	}
	row++
	for _, section := range semantic.Sections {
		for _, group := range section.Groups {
			for _, counter := range group.Counters {
				var source, equationText string
				if counter.IsDerived() {
					equationText = equation.Format(counter.EquationAST)
				} else {
					source = counter.SourceName
				}
				values := []string{
					section.Name,
					group.Name,
					counter.HumanName,
					counter.MachineName,
					counter.Unit,
					counter.Trend.String(),
					counter.Visibility.String(),
					source,
					equationText,
					counter.ShortDescription,
				}
				for col, value := range values {
					_ = f.SetCellValue(xlsxSheetName, cellName(col+1, row), value)
				}
				row++
			}
		}
	}
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	_, err = f.WriteTo(w)
	if err != nil {
		err = fmt.Errorf("failed to write xlsx listing to buffer: %v", err)
		return
	}
	_ = w.Flush()
	out = buf.Bytes()
	return
}
