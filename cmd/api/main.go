package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/config"
	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	appHTTP "github.com/cmlabs-hris/attendance-analyzer/internal/handler/http"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-analyzer/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-analyzer/internal/service/attendance"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(os.Stdout, cfg.App)
	slog.SetDefault(logger)

	catalog, err := config.LoadProfileCatalog(cfg.Profiles)
	if err != nil {
		slog.Error("Error loading site profiles", "error", err)
		os.Exit(1)
	}

	appMetrics := metrics.NewMetrics("attendance")

	// Report archive is optional; a nil repository disables it
	var reportRepo attendance.ReportRepository
	scheduler := cron.NewScheduler(logger)
	if cfg.Archive.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			cancel()
			slog.Error("Error connecting to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		repo := postgresql.NewReportRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			slog.Error("Error preparing report archive", "error", err)
			os.Exit(1)
		}
		cancel()
		reportRepo = repo

		archiveJobs := cron.NewArchiveJobs(repo, cfg.Archive.Retention(), cfg.Archive.PurgeInterval, appMetrics)
		archiveJobs.RegisterJobs(scheduler)
	}
	scheduler.Start()
	defer scheduler.Stop()

	attendanceSvc := attendanceService.NewAttendanceService(catalog, reportRepo, appMetrics)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)

	router := appHTTP.NewRouter(logger, appMetrics, cfg.App.CORSOrigins, attendanceHandler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("Server running",
		"addr", "http://localhost"+port,
		"default_profile", catalog.DefaultName,
		"profiles", len(catalog.Profiles),
		"archive_enabled", reportRepo != nil,
	)
	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("Server error", "error", err)
	}
}
