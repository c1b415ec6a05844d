package printout

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"oee-board/internal/service/format"
	"oee-board/internal/service/ranking"
)

var csvHeader = []string{"rank", "name", "total_produced", "total_good", "oee", "yield", "value"}

// WriteCSV writes every ranked record, podium places included, one row each.
func WriteCSV(w io.Writer, ranked []ranking.Ranked, m ranking.Metric) error {
	const op = "printout.WriteCSV"

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("%s: header: %w", op, err)
	}

	for _, r := range ranked {
		err := cw.Write([]string{
			strconv.Itoa(r.DisplayRank),
			r.Name,
			strconv.Itoa(r.TotalProduced),
			strconv.Itoa(r.TotalGood),
			format.OEEPercent(r.OEE),
			format.YieldPercent(r.TotalGood, r.TotalProduced),
			PodiumValue(r, m),
		})
		if err != nil {
			return fmt.Errorf("%s: row %d: %w", op, r.DisplayRank, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: flush: %w", op, err)
	}

	return nil
}
