// Package dashboard loads the independent data sources of the dashboard in parallel.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"oee-board/internal/storage"
)

const (
	SourceStats     = "stats"
	SourceOperators = "operators"
	SourceParts     = "parts"
	SourceShifts    = "shifts"
)

type Source interface {
	Stats(ctx context.Context, reportID int64) (storage.DashboardStats, error)
	Compare(ctx context.Context, f storage.CompareFilter) ([]storage.OperatorRecord, error)
}

// View is what the dashboard currently shows. A nil field was never loaded.
type View struct {
	Stats     *storage.DashboardStats
	Operators []storage.OperatorRecord
	Parts     []storage.OperatorRecord
	Shifts    []storage.OperatorRecord
}

// Query narrows the sources. Zero values mean latest report and no date window.
type Query struct {
	ReportID int64
	From     string
	To       string
}

type Dashboard struct {
	src Source
	log *slog.Logger

	mu   sync.RWMutex
	view View
}

func New(log *slog.Logger, src Source) *Dashboard {
	return &Dashboard{src: src, log: log}
}

func (d *Dashboard) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.view
}

// Refresh fetches every source concurrently. Each result replaces its part of
// the view only when its own fetch succeeded; a failing source keeps the
// previous data and never cancels the others. The returned map holds the
// failures by source name and is empty when everything loaded.
func (d *Dashboard) Refresh(ctx context.Context, q Query) map[string]error {
	const op = "service.dashboard.Refresh"

	var (
		g      errgroup.Group
		errsMu sync.Mutex
		errs   = map[string]error{}
	)

	fail := func(source string, err error) {
		d.log.Error("failed to load dashboard source",
			slog.String("op", op),
			slog.String("source", source),
			slog.String("error", err.Error()),
		)
		errsMu.Lock()
		errs[source] = fmt.Errorf("%s: %s: %w", op, source, err)
		errsMu.Unlock()
	}

	g.Go(func() error {
		st, err := d.src.Stats(ctx, q.ReportID)
		if err != nil {
			fail(SourceStats, err)
			return nil
		}
		d.mu.Lock()
		d.view.Stats = &st
		d.mu.Unlock()
		return nil
	})

	compare := map[string]storage.GroupBy{
		SourceOperators: storage.GroupByOperator,
		SourceParts:     storage.GroupByPart,
		SourceShifts:    storage.GroupByShift,
	}
	for source, groupBy := range compare {
		g.Go(func() error {
			records, err := d.src.Compare(ctx, storage.CompareFilter{GroupBy: groupBy, From: q.From, To: q.To})
			if err != nil {
				fail(source, err)
				return nil
			}
			d.mu.Lock()
			defer d.mu.Unlock()
			switch source {
			case SourceOperators:
				d.view.Operators = records
			case SourceParts:
				d.view.Parts = records
			case SourceShifts:
				d.view.Shifts = records
			}
			return nil
		})
	}

	_ = g.Wait()

	return errs
}
