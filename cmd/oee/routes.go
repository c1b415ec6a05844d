package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"oee-board/http-server/analytics/compare"
	"oee-board/http-server/auth/login"
	getentries "oee-board/http-server/entries/get"
	removeentry "oee-board/http-server/entries/remove"
	saveentry "oee-board/http-server/entries/save"
	updateentry "oee-board/http-server/entries/update"
	gethealth "oee-board/http-server/health/get"
	getleaderboard "oee-board/http-server/leaderboard/get"
	getmetrics "oee-board/http-server/metrics/get"
	"oee-board/http-server/metrics/printpage"
	savemetrics "oee-board/http-server/metrics/save"
	exportreport "oee-board/http-server/reports/export"
	getreports "oee-board/http-server/reports/get"
	removereport "oee-board/http-server/reports/remove"
	updatereport "oee-board/http-server/reports/update"
	"oee-board/http-server/reports/upload"
	getsettings "oee-board/http-server/settings/get"
	updatesettings "oee-board/http-server/settings/update"
	authn "oee-board/internal/auth"
	"oee-board/internal/config"
	"oee-board/internal/middleware/auth"
	"oee-board/internal/service/export"
	"oee-board/internal/service/stats"
	"oee-board/internal/storage/sqlstore"
)

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage *sqlstore.Storage,
	issuer *authn.Issuer,
	statsService *stats.StatsService,
	exportService *export.ExportService,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", gethealth.Health(log, storage))
	router.Post("/auth/login", login.Login(log, storage, issuer))

	signIn := auth.Static(authn.StaticAdmin)
	if cfg.Auth.Mode == config.AuthToken {
		signIn = auth.Bearer(log, issuer)
	}

	router.Group(func(r chi.Router) {
		r.Use(signIn)

		r.Get("/analytics/compare", compare.Compare(log, storage))
		r.Get("/leaderboard", getleaderboard.GetLeaderboard(log, storage))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", getreports.ListReports(log, storage))
			r.Post("/upload", upload.UploadReport(log, storage))
			r.Put("/{id}", updatereport.RenameReport(log, storage))
			r.With(auth.RequireAdmin).Delete("/{id}", removereport.DeleteReport(log, storage))
			r.Get("/{id}/export", exportreport.ExportReport(log, exportService))

			r.Get("/{id}/entries", getentries.ListEntries(log, storage))
			r.Post("/{id}/entries", saveentry.CreateEntry(log, storage))
			r.Put("/entries/{id}", updateentry.UpdateEntry(log, storage))
			r.Delete("/entries/{id}", removeentry.DeleteEntry(log, storage))
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/stats", getmetrics.GetStats(log, statsService))
			r.Get("/stats/print", printpage.PrintStats(log, statsService))
			r.Get("/report/{report_id}", getmetrics.GetReportMetrics(log, storage))
			r.With(auth.RequireAdmin).Post("/{report_id}", savemetrics.IngestMetrics(log, storage))
		})
	})

	router.Route("/settings", func(r chi.Router) {
		r.With(signIn).Get("/", getsettings.ListSettings(log, storage))
		r.With(signIn).Get("/{key}", getsettings.GetSetting(log, storage))
		// writes take the admin login instead of a token
		r.With(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass)).Put("/{key}", updatesettings.PutSetting(log, storage))
	})

	frontendDir := cfg.FrontendDir
	if _, err := os.Stat(frontendDir); err != nil {
		log.Warn("frontend dir not found, serving API only", slog.String("path", frontendDir))
		return router
	}

	fileServer := http.FileServer(http.Dir(frontendDir))
	router.Handle("/assets/*", fileServer)

	// SPA fallback: real files are served as is, everything else gets index.html
	router.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		path := filepath.Join(frontendDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			http.ServeFile(w, r, path)
			return
		}
		http.ServeFile(w, r, filepath.Join(frontendDir, "index.html"))
	})

	return router
}
