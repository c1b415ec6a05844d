package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"oee-board/internal/service/dashboard"
	"oee-board/internal/service/format"
	"oee-board/internal/storage"
)

const topGroups = 5

var (
	dashReport int64
	dashFrom   string
	dashTo     string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the KPI snapshot and the best operators, parts and shifts",
	Long: `Load the dashboard sources in parallel and print what arrived.

A source that fails is reported on stderr; the others are still shown.`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().Int64VarP(&dashReport, "report", "r", 0, "Report id (default latest)")
	dashboardCmd.Flags().StringVar(&dashFrom, "from", "", "Start date YYYY-MM-DD for the group tables")
	dashboardCmd.Flags().StringVar(&dashTo, "to", "", "End date YYYY-MM-DD for the group tables")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd, 30*time.Second)
	defer cancel()

	board := dashboard.New(logger, api)
	errs := board.Refresh(ctx, dashboard.Query{ReportID: dashReport, From: dashFrom, To: dashTo})

	sources := []string{dashboard.SourceStats, dashboard.SourceOperators, dashboard.SourceParts, dashboard.SourceShifts}
	for _, src := range sources {
		if err, ok := errs[src]; ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to load %s: %v\n", src, err)
		}
	}
	if len(errs) == len(sources) {
		return fmt.Errorf("dashboard unavailable")
	}

	writeView(cmd.OutOrStdout(), board.View())
	return nil
}

func writeView(w io.Writer, v dashboard.View) {
	if st := v.Stats; st != nil {
		if st.ReportDate == "" {
			fmt.Fprintln(w, "No reports uploaded yet")
		} else {
			fmt.Fprintf(w, "Report #%d (%s), %d rows\n", st.ReportID, st.ReportDate, st.DBRowCount)
		}
		fmt.Fprintf(w, "OEE %.1f%%  Availability %.1f%%  Performance %.1f%%  Quality %.1f%%\n",
			st.OEE, st.Availability, st.Performance, st.Quality)
		for _, line := range st.Insights {
			fmt.Fprintf(w, "  * %s\n", line)
		}
	}

	writeGroups(w, "Operators", v.Operators)
	writeGroups(w, "Parts", v.Parts)
	writeGroups(w, "Shifts", v.Shifts)
}

func writeGroups(w io.Writer, title string, records []storage.OperatorRecord) {
	if records == nil {
		return
	}

	fmt.Fprintf(w, "\n%s\n", title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tOEE\tProduced\tGood\tSamples")
	for _, r := range records[:min(len(records), topGroups)] {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
			r.Name, format.Percent(r.OEE, 1), format.Count(r.TotalProduced), format.Count(r.TotalGood), r.SampleSize)
	}
	tw.Flush()
}

