package upload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"oee-board/internal/auth"
	parser "oee-board/internal/service/upload"
	"oee-board/internal/storage"
)

const maxUploadSize = 32 << 20

type ReportSaver interface {
	CreateReport(ctx context.Context, report storage.Report, entries []storage.ReportEntry) (int64, error)
}

type Response struct {
	ReportID int64  `json:"report_id"`
	Rows     int    `json:"rows"`
	Message  string `json:"message"`
}

// UploadReport stores a production extract sent as the multipart field "file".
func UploadReport(log *slog.Logger, saver ReportSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reports.UploadReport"

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "multipart field \"file\" is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		log := log.With(slog.String("op", op), slog.String("filename", header.Filename))

		entries, err := parser.Parse(header.Filename, file, time.Now())
		if err != nil {
			var (
				mcErr   *parser.MissingColumnsError
				dateErr *parser.InvalidDateError
			)
			switch {
			case errors.As(err, &mcErr):
				http.Error(w, mcErr.Error(), http.StatusBadRequest)
			case errors.As(err, &dateErr):
				http.Error(w, dateErr.Error(), http.StatusBadRequest)
			case errors.Is(err, parser.ErrUnsupportedFile), errors.Is(err, parser.ErrEmptyFile),
				errors.Is(err, storage.ErrInvalidRecord):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				log.Error("failed to parse upload", slog.String("error", err.Error()))
				http.Error(w, "Processing failed", http.StatusBadRequest)
			}
			return
		}

		uploadedBy := auth.StaticAdmin.ID
		if id, ok := auth.FromContext(r.Context()); ok && id.ID != 0 {
			uploadedBy = id.ID
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		reportID, err := saver.CreateReport(ctx, storage.Report{Filename: header.Filename, UploadedBy: uploadedBy}, entries)
		if err != nil {
			log.Error("failed to store report", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		log.Info("report uploaded", slog.Int64("report_id", reportID), slog.Int("rows", len(entries)))

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, Response{ReportID: reportID, Rows: len(entries), Message: "Report uploaded successfully"})
	}
}
