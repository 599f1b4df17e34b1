package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-analyzer/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analyzer/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reportSchema = `
	CREATE TABLE IF NOT EXISTS attendance_report_runs (
		id          UUID PRIMARY KEY,
		profile     TEXT NOT NULL,
		statistics  JSONB NOT NULL,
		metadata    JSONB NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS attendance_report_users (
		run_id               UUID NOT NULL REFERENCES attendance_report_runs(id) ON DELETE CASCADE,
		position             INT NOT NULL,
		user_name            TEXT NOT NULL,
		mandatory_days_total INT NOT NULL,
		total_attendance     INT,
		compliant            BOOLEAN,
		PRIMARY KEY (run_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_report_runs_created_at
		ON attendance_report_runs (created_at DESC);
`

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) attendance.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// EnsureSchema implements attendance.ReportRepository.
func (r *reportRepositoryImpl) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, reportSchema); err != nil {
		return fmt.Errorf("failed to create report archive schema: %w", err)
	}
	return nil
}

// Save implements attendance.ReportRepository.
// The run and its user rows are written in one transaction.
func (r *reportRepositoryImpl) Save(ctx context.Context, report attendance.Report) (attendance.ArchivedReport, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.ArchivedReport{}, fmt.Errorf("failed to generate report id: %w", err)
	}

	statistics, err := json.Marshal(report.Statistics)
	if err != nil {
		return attendance.ArchivedReport{}, fmt.Errorf("failed to encode statistics: %w", err)
	}
	metadata, err := json.Marshal(report.Ingestion)
	if err != nil {
		return attendance.ArchivedReport{}, fmt.Errorf("failed to encode ingestion metadata: %w", err)
	}

	var createdAt time.Time
	err = WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		q := GetQuerier(ctx, r.db)

		err := q.QueryRow(ctx, `
			INSERT INTO attendance_report_runs (id, profile, statistics, metadata)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`, id.String(), report.Ingestion.Profile, statistics, metadata).Scan(&createdAt)
		if err != nil {
			return fmt.Errorf("failed to insert report run: %w", err)
		}

		for i, u := range report.Users {
			_, err := q.Exec(ctx, `
				INSERT INTO attendance_report_users
					(run_id, position, user_name, mandatory_days_total, total_attendance, compliant)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, id.String(), i, u.User, u.MandatoryDaysTotal, u.TotalAttendance, u.Compliant)
			if err != nil {
				return fmt.Errorf("failed to insert report user %q: %w", u.User, err)
			}
		}
		return nil
	})
	if err != nil {
		return attendance.ArchivedReport{}, err
	}

	users := report.Users
	if users == nil {
		users = []attendance.UserSummary{}
	}
	return attendance.ArchivedReport{
		ID:         id.String(),
		CreatedAt:  createdAt.UTC().Format(time.RFC3339),
		Ingestion:  report.Ingestion,
		Statistics: report.Statistics,
		Users:      users,
	}, nil
}

// GetByID implements attendance.ReportRepository.
func (r *reportRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.ArchivedReport, error) {
	q := GetQuerier(ctx, r.db)

	var (
		archived   attendance.ArchivedReport
		statistics []byte
		metadata   []byte
		createdAt  time.Time
	)
	err := q.QueryRow(ctx, `
		SELECT id::text, statistics, metadata, created_at
		FROM attendance_report_runs
		WHERE id = $1
	`, id).Scan(&archived.ID, &statistics, &metadata, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ArchivedReport{}, attendance.ErrReportNotFound
		}
		return attendance.ArchivedReport{}, fmt.Errorf("failed to get report run: %w", err)
	}
	archived.CreatedAt = createdAt.UTC().Format(time.RFC3339)

	if err := json.Unmarshal(statistics, &archived.Statistics); err != nil {
		return attendance.ArchivedReport{}, fmt.Errorf("failed to decode statistics: %w", err)
	}
	if err := json.Unmarshal(metadata, &archived.Ingestion); err != nil {
		return attendance.ArchivedReport{}, fmt.Errorf("failed to decode ingestion metadata: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT user_name, mandatory_days_total, total_attendance, compliant
		FROM attendance_report_users
		WHERE run_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return attendance.ArchivedReport{}, fmt.Errorf("failed to get report users: %w", err)
	}
	defer rows.Close()

	archived.Users = []attendance.UserSummary{}
	for rows.Next() {
		var u attendance.UserSummary
		if err := rows.Scan(&u.User, &u.MandatoryDaysTotal, &u.TotalAttendance, &u.Compliant); err != nil {
			return attendance.ArchivedReport{}, fmt.Errorf("failed to scan report user: %w", err)
		}
		archived.Users = append(archived.Users, u)
	}
	if err := rows.Err(); err != nil {
		return attendance.ArchivedReport{}, fmt.Errorf("failed to iterate report users: %w", err)
	}

	return archived, nil
}

// DeleteCreatedBefore implements attendance.ReportRepository.
// User rows go with their run through ON DELETE CASCADE.
func (r *reportRepositoryImpl) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_report_runs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired report runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
