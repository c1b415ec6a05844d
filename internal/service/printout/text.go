package printout

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteText prints doc as plain text for terminals.
func WriteText(w io.Writer, doc Document) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n%s\nPeriod: %s\n\n", doc.Title, doc.Subtitle, doc.Period)

	for _, p := range doc.Podium {
		fmt.Fprintf(tw, "%d.\t%s\t%s\n", p.Place, p.Name, p.Value)
	}

	if len(doc.Rows) > 0 {
		fmt.Fprintf(tw, "\nRANK\tOPERATOR\tVOLUME\tGOOD PARTS\t%s\n", doc.ValueHeader)
		for _, r := range doc.Rows {
			fmt.Fprintf(tw, "#%d\t%s\t%s\t%s\t%s\n", r.Rank, r.Name, r.Volume, r.Good, r.Value)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("printout.WriteText: %w", err)
	}

	return nil
}
