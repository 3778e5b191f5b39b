package models

import (
	"database/sql"
	"time"
)

// Report is one persisted analyzer answer.
type Report struct {
	ID                  string    `db:"id" json:"id"`
	Content             string    `db:"content" json:"content"`
	StudentName         string    `db:"student_name" json:"studentName"`
	Registration        string    `db:"registration" json:"registration"`
	StudentActualCourse string    `db:"student_actual_course" json:"studentActualCourse"`
	StudentTargetCourse string    `db:"student_target_course" json:"studentTargetCourse"`
	GeneratorID         *string   `db:"generator_id" json:"generatorId"`
	CreatedAt           time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// GeneratorInfo is the public identity of the user who requested a report.
type GeneratorInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReportRow is a report joined with its optional generator.
type ReportRow struct {
	Report
	GeneratorName  sql.NullString `db:"generator_name"`
	GeneratorEmail sql.NullString `db:"generator_email"`
}

// Generator returns the joined generator, or nil when the reference is
// absent or the user no longer exists.
func (r ReportRow) Generator() *GeneratorInfo {
	if r.GeneratorID == nil || !r.GeneratorName.Valid {
		return nil
	}
	return &GeneratorInfo{ID: *r.GeneratorID, Name: r.GeneratorName.String, Email: r.GeneratorEmail.String}
}

// ReportListItem is the lightweight projection returned by listings.
type ReportListItem struct {
	ID                  string         `json:"id"`
	StudentName         string         `json:"studentName"`
	Registration        string         `json:"registration"`
	StudentActualCourse string         `json:"studentActualCourse"`
	StudentTargetCourse string         `json:"studentTargetCourse"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	Generator           *GeneratorInfo `json:"generator"`
	ContentPreview      string         `json:"contentPreview"`
}

// ReportList is the listing payload.
type ReportList struct {
	Reports []ReportListItem `json:"reports"`
	Total   int              `json:"total"`
}

// ReportDetail is a single report with its content parsed for presentation.
type ReportDetail struct {
	ID                  string          `json:"id"`
	StudentName         string          `json:"studentName"`
	Registration        string          `json:"registration"`
	StudentActualCourse string          `json:"studentActualCourse"`
	StudentTargetCourse string          `json:"studentTargetCourse"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
	Generator           *GeneratorInfo  `json:"generator"`
	Analysis            AnalysisSummary `json:"analysis"`
}

// DeleteReportResponse confirms a removal.
type DeleteReportResponse struct {
	Message   string `json:"message"`
	DeletedID string `json:"deletedId"`
}
