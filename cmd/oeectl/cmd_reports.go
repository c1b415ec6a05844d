package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"oee-board/internal/service/export"
)

var (
	exportFormat string
	exportOut    string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a CSV or XLSX production extract",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

var exportCmd = &cobra.Command{
	Use:   "export <report-id>",
	Short: "Download a report with its metrics as CSV or XLSX",
	Long: `Download the entries of a report joined with their OEE metrics.

Without --out the file is saved in the current directory under the name the server sends.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatCSV, "csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file")
}

func runUpload(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, cancel := withTimeout(cmd, 2*time.Minute)
	defer cancel()

	id, err := api.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s as report #%d\n", filepath.Base(path), id)
	return nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return id, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0], "report id")
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(cmd, time.Minute)
	defer cancel()

	var buf bytes.Buffer
	name, err := api.Export(ctx, id, exportFormat, &buf)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = filepath.Base(name)
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", out, buf.Len())
	return nil
}
