package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/equivalence-api/internal/models"
)

const reportSelect = `SELECT r.id, r.content, r.student_name, r.registration, r.student_actual_course,
r.student_target_course, r.generator_id, r.created_at, r.updated_at,
u.name AS generator_name, u.email AS generator_email
FROM reports r LEFT JOIN users u ON u.id = r.generator_id`

// ReportRepository persists analyzer reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report, assigning its id and timestamps.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	const query = `INSERT INTO reports (id, content, student_name, registration, student_actual_course, student_target_course, generator_id, created_at, updated_at)
VALUES (:id, :content, :student_name, :registration, :student_actual_course, :student_target_course, :generator_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

// List returns every report, newest first, joined with its generator.
func (r *ReportRepository) List(ctx context.Context) ([]models.ReportRow, error) {
	query := reportSelect + ` ORDER BY r.created_at DESC`
	rows := make([]models.ReportRow, 0)
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return rows, nil
}

// GetByID returns one report. sql.ErrNoRows is returned unwrapped on miss.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.ReportRow, error) {
	query := reportSelect + ` WHERE r.id = $1`
	var row models.ReportRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &row, nil
}

// Delete removes a report and reports whether a row existed.
func (r *ReportRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete report rows affected: %w", err)
	}
	return affected > 0, nil
}
