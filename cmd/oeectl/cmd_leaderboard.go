package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"oee-board/internal/service/printout"
	"oee-board/internal/service/ranking"
	"oee-board/internal/storage"
)

const rosterLimit = 1000

var (
	boardMetric  string
	boardDays    int
	boardGroupBy string
	boardFormat  string
	boardOut     string
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Rank operators and print the leaderboard",
	Long: `Fetch the roster for the last --days days, rank it by --metric and print it.

Metrics:
  volume  total parts produced
  oee     average OEE
  yield   good/produced, rosters with 50 parts or fewer are left out

Formats: text, html (print poster), csv, xlsx.`,
	Args: cobra.NoArgs,
	RunE: runLeaderboard,
}

func init() {
	leaderboardCmd.Flags().StringVarP(&boardMetric, "metric", "m", string(ranking.MetricVolume), "volume, oee or yield")
	leaderboardCmd.Flags().IntVarP(&boardDays, "days", "d", printout.DefaultWindowDays, "Window size in days")
	leaderboardCmd.Flags().StringVarP(&boardGroupBy, "group-by", "g", string(storage.GroupByOperator), "operator, part, shift or machine")
	leaderboardCmd.Flags().StringVarP(&boardFormat, "format", "f", "text", "text, html, csv or xlsx")
	leaderboardCmd.Flags().StringVarP(&boardOut, "out", "o", "", "Output file (default stdout)")
}

func writeLeaderboard(w io.Writer, format string, ranked []ranking.Ranked, m ranking.Metric, period string) error {
	doc := printout.Compose(ranked, m, period)

	switch format {
	case "text":
		return printout.WriteText(w, doc)
	case "html":
		return printout.WriteHTML(w, doc)
	case "csv":
		return printout.WriteCSV(w, ranked, m)
	case "xlsx":
		return printout.WriteXLSX(w, doc, ranked)
	}
	return fmt.Errorf("unknown format %q", format)
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	metric, err := ranking.ParseMetric(boardMetric)
	if err != nil {
		return err
	}
	groupBy, err := storage.ParseGroupBy(boardGroupBy)
	if err != nil {
		return err
	}
	if boardDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	now := time.Now()
	from, to := printout.Window(now, boardDays)

	ctx, cancel := withTimeout(cmd, 30*time.Second)
	defer cancel()

	roster, err := api.Compare(ctx, storage.CompareFilter{GroupBy: groupBy, From: from, To: to, Limit: rosterLimit})
	if err != nil {
		return err
	}

	board := ranking.NewBoard(metric)
	ranked := board.SetRoster(roster)
	logger.Debug("ranked roster", "metric", metric, "records", len(roster), "ranked", len(ranked))

	period := printout.Period(now, boardDays)
	if boardOut == "" {
		return writeLeaderboard(cmd.OutOrStdout(), boardFormat, ranked, board.Metric(), period)
	}

	f, err := os.Create(boardOut)
	if err != nil {
		return err
	}
	if err := writeLeaderboard(f, boardFormat, ranked, board.Metric(), period); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
