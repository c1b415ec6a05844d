package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"oee-board/internal/grid"
	"oee-board/internal/storage"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List and edit the rows of a report",
}

var entriesListCmd = &cobra.Command{
	Use:   "list <report-id>",
	Short: "List report rows, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntriesList,
}

var entriesAddCmd = &cobra.Command{
	Use:   "add <report-id> [field=value...]",
	Short: "Add a row with placeholder values, then apply the given fields",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runEntriesAdd,
}

var entriesEditCmd = &cobra.Command{
	Use:   "edit <report-id> <entry-id> field=value...",
	Short: "Change fields of a row",
	Long: `Change fields of a row. Editable fields:
  shift, operator, machine, part_number, job,
  good_count, reject_count, run_time_min, downtime_min

If the server rejects the change the row keeps its previous values.`,
	Args: cobra.MinimumNArgs(3),
	RunE: runEntriesEdit,
}

var entriesDeleteCmd = &cobra.Command{
	Use:   "delete <report-id> <entry-id>",
	Short: "Delete a row",
	Args:  cobra.ExactArgs(2),
	RunE:  runEntriesDelete,
}

func init() {
	entriesCmd.AddCommand(entriesListCmd, entriesAddCmd, entriesEditCmd, entriesDeleteCmd)
}

// cliNotifier prints grid notifications to stderr.
type cliNotifier struct {
	w io.Writer
}

func (n cliNotifier) Success(msg string) {
	fmt.Fprintln(n.w, msg)
}

func (n cliNotifier) Error(msg string, err error) {
	fmt.Fprintf(n.w, "%s: %v\n", msg, err)
}

// loadGrid opens the grid of the report named by args[0].
func loadGrid(cmd *cobra.Command, args []string) (*grid.Controller, error) {
	reportID, err := parseID(args[0], "report id")
	if err != nil {
		return nil, err
	}

	ctrl := grid.New(api, reportID, cliNotifier{w: cmd.ErrOrStderr()}, logger)

	ctx, cancel := withTimeout(cmd, 30*time.Second)
	defer cancel()

	if err := ctrl.Load(ctx); err != nil {
		return nil, err
	}
	return ctrl, nil
}

type assignment struct {
	field grid.Field
	value string
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		field, err := grid.ParseField(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		out = append(out, assignment{field: field, value: value})
	}
	return out, nil
}

// apply edits row id with the assignments and saves it.
func apply(cmd *cobra.Command, ctrl *grid.Controller, id int64, set []assignment) error {
	if err := ctrl.Edit(id); err != nil {
		return err
	}
	for _, a := range set {
		if err := ctrl.Set(a.field, a.value); err != nil {
			ctrl.Cancel()
			return err
		}
	}

	ctx, cancel := withTimeout(cmd, 30*time.Second)
	defer cancel()

	err := ctrl.Save(ctx, id)
	var vErr *grid.ValidationError
	if errors.As(err, &vErr) {
		for _, f := range grid.Fields {
			if msg, ok := vErr.Fields[f]; ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Title(), msg)
			}
		}
		ctrl.Cancel()
	}
	return err
}

func runEntriesList(cmd *cobra.Command, args []string) error {
	ctrl, err := loadGrid(cmd, args)
	if err != nil {
		return err
	}

	writeEntries(cmd.OutOrStdout(), ctrl.Rows())
	return nil
}

func runEntriesAdd(cmd *cobra.Command, args []string) error {
	set, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	ctrl, err := loadGrid(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd, 30*time.Second)
	defer cancel()

	created, err := ctrl.Add(ctx)
	if err != nil {
		return err
	}

	if len(set) > 0 {
		// Add leaves the new row open; apply reuses that edit.
		if err := apply(cmd, ctrl, created.ID, set); err != nil {
			return err
		}
	} else {
		ctrl.Cancel()
	}

	rows := ctrl.Rows()
	writeEntries(cmd.OutOrStdout(), rows[:1])
	return nil
}

func runEntriesEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[1], "entry id")
	if err != nil {
		return err
	}
	set, err := parseAssignments(args[2:])
	if err != nil {
		return err
	}

	ctrl, err := loadGrid(cmd, args)
	if err != nil {
		return err
	}

	if err := apply(cmd, ctrl, id, set); err != nil {
		return err
	}

	for _, e := range ctrl.Rows() {
		if e.ID == id {
			writeEntries(cmd.OutOrStdout(), []storage.ReportEntry{e})
		}
	}
	return nil
}

func runEntriesDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[1], "entry id")
	if err != nil {
		return err
	}

	ctrl, err := loadGrid(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd, 30*time.Second)
	defer cancel()

	return ctrl.Delete(ctx, id)
}

func writeEntries(w io.Writer, rows []storage.ReportEntry) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDate\tShift\tOperator\tMachine\tPart\tJob\tGood\tReject\tRun\tDown")
	for _, e := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			e.ID, e.Date, e.Shift, e.Operator, e.Machine, e.PartNumber, e.Job,
			e.GoodCount, e.RejectCount,
			strconv.FormatFloat(e.RunTimeMin, 'f', -1, 64), strconv.FormatFloat(e.DowntimeMin, 'f', -1, 64))
	}
	tw.Flush()
}
