package printout

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"oee-board/internal/service/format"
	"oee-board/internal/service/ranking"
)

const leaderboardSheet = "Leaderboard"

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// WriteXLSX writes the ranked roster as a workbook with a styled header and
// podium rows filled with their place color.
func WriteXLSX(w io.Writer, doc Document, ranked []ranking.Ranked) error {
	const op = "printout.WriteXLSX"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leaderboardSheet); err != nil {
		return fmt.Errorf("%s: rename sheet: %w", op, err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14, Color: "003366"}})
	if err != nil {
		return fmt.Errorf("%s: title style: %w", op, err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"F0F0F0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "DDDDDD", Style: 2}},
	})
	if err != nil {
		return fmt.Errorf("%s: header style: %w", op, err)
	}

	f.SetCellValue(leaderboardSheet, "A1", doc.Title)
	f.SetCellValue(leaderboardSheet, "A2", doc.Subtitle)
	f.SetCellValue(leaderboardSheet, "A3", "Period: "+doc.Period)
	f.SetCellStyle(leaderboardSheet, "A1", "A1", titleStyle)

	const headerRow = 5
	headers := []string{"Rank", "Operator", "Volume", "Good Parts", "OEE", "Yield"}
	for i, h := range headers {
		f.SetCellValue(leaderboardSheet, cellName(i+1, headerRow), h)
	}
	f.SetCellStyle(leaderboardSheet, cellName(1, headerRow), cellName(len(headers), headerRow), headerStyle)

	for i, r := range ranked {
		row := headerRow + 1 + i
		f.SetCellValue(leaderboardSheet, cellName(1, row), r.DisplayRank)
		f.SetCellValue(leaderboardSheet, cellName(2, row), r.Name)
		f.SetCellValue(leaderboardSheet, cellName(3, row), r.TotalProduced)
		f.SetCellValue(leaderboardSheet, cellName(4, row), r.TotalGood)
		f.SetCellValue(leaderboardSheet, cellName(5, row), format.Round(r.OEE, 4))
		f.SetCellValue(leaderboardSheet, cellName(6, row), format.Round(format.Yield(r.TotalGood, r.TotalProduced), 4))

		if r.Rank < PodiumSize {
			style, err := f.NewStyle(&excelize.Style{
				Font: &excelize.Font{Bold: true},
				Fill: excelize.Fill{Type: "pattern", Color: []string{format.RankColor(r.Rank)[1:]}, Pattern: 1},
			})
			if err != nil {
				return fmt.Errorf("%s: podium style: %w", op, err)
			}
			f.SetCellStyle(leaderboardSheet, cellName(1, row), cellName(len(headers), row), style)
		}
	}

	f.SetPanes(leaderboardSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cellName(1, headerRow+1),
		ActivePane:  "bottomLeft",
	})
	f.SetColWidth(leaderboardSheet, "B", "B", 28)
	f.SetColWidth(leaderboardSheet, "C", "F", 14)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("%s: write: %w", op, err)
	}

	return nil
}
