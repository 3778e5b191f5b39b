package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/equivalence-api/internal/equivalence"
	"github.com/noah-isme/equivalence-api/internal/models"
	appErrors "github.com/noah-isme/equivalence-api/pkg/errors"
	"github.com/noah-isme/equivalence-api/pkg/export"
	"github.com/noah-isme/equivalence-api/pkg/jobs"
)

// Client-facing report messages.
const (
	MsgReportNotFound = "Report não encontrado."
	MsgReportDeleted  = "Report deletado com sucesso."
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

const previewRunes = 280

type reportStore interface {
	List(ctx context.Context) ([]models.ReportRow, error)
	GetByID(ctx context.Context, id string) (*models.ReportRow, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type csvRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// ExportFile is a rendered report ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportServiceConfig tunes caching.
type ReportServiceConfig struct {
	CacheTTL time.Duration
}

// ReportService lists, formats, exports and deletes stored reports.
type ReportService struct {
	repo   reportStore
	cache  *CacheService
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	cfg    ReportServiceConfig
}

// NewReportService constructs a ReportService. cache may be nil.
func NewReportService(repo reportStore, cache *CacheService, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{repo: repo, cache: cache, csv: csv, pdf: pdf, logger: logger, cfg: cfg}
}

// CacheKey returns the cache key of a formatted report.
func CacheKey(id string) string {
	return "report:" + id
}

// deletedKey marks a report as deleted so that a read that raced with the
// delete cannot put it back into the cache.
func deletedKey(id string) string {
	return "report:deleted:" + id
}

// List returns every report, newest first, without full content.
func (s *ReportService) List(ctx context.Context) (*models.ReportList, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to list reports")
	}
	items := make([]models.ReportListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.ReportListItem{
			ID:                  row.ID,
			StudentName:         row.StudentName,
			Registration:        row.Registration,
			StudentActualCourse: row.StudentActualCourse,
			StudentTargetCourse: row.StudentTargetCourse,
			CreatedAt:           row.CreatedAt,
			UpdatedAt:           row.UpdatedAt,
			Generator:           row.Generator(),
			ContentPreview:      truncateRunes(row.Content, previewRunes),
		})
	}
	return &models.ReportList{Reports: items, Total: len(items)}, nil
}

// Get returns a report with its content parsed into an AnalysisSummary,
// reading through the cache when enabled.
func (s *ReportService) Get(ctx context.Context, id string) (*models.ReportDetail, error) {
	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}

	var cached models.ReportDetail
	if hit, _ := s.cache.Get(ctx, CacheKey(id), &cached); hit {
		return &cached, nil
	}

	detail, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	_, _ = s.cacheDetail(ctx, id, detail)
	return detail, nil
}

// Delete removes a report and its cached rendering.
func (s *ReportService) Delete(ctx context.Context, id string) (*models.DeleteReportResponse, error) {
	id, err := canonicalID(id)
	if err != nil {
		return nil, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrPersistence, err, "failed to delete report")
	}
	if !deleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgReportNotFound)
	}
	// The marker goes in before the invalidation; cacheDetail checks it after writing.
	if err := s.cache.Set(ctx, deletedKey(id), true, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to mark report deleted in cache", zap.String("report_id", id), zap.Error(err))
	}
	if err := s.cache.Invalidate(ctx, CacheKey(id)); err != nil {
		s.logger.Warn("stale report left in cache", zap.String("report_id", id), zap.Error(err))
	}
	return &models.DeleteReportResponse{Message: MsgReportDeleted, DeletedID: id}, nil
}

// Export renders a report as CSV or PDF.
func (s *ReportService) Export(ctx context.Context, id, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	doc := buildDocument(detail)

	file := &ExportFile{Filename: exportFilename(detail, format)}
	switch format {
	case FormatPDF:
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(doc)
	default:
		file.ContentType = "text/csv; charset=utf-8"
		file.Data, err = s.csv.Render(doc)
	}
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to render report")
	}
	return file, nil
}

// HandleWarmup is the queue handler that pre-renders a new report into the
// cache. Reports deleted in the meantime are skipped.
func (s *ReportService) HandleWarmup(ctx context.Context, job jobs.Job) error {
	if !s.cache.Enabled() {
		return nil
	}
	id, err := canonicalID(job.ID)
	if err != nil {
		return nil
	}
	detail, err := s.load(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	kept, err := s.cacheDetail(ctx, id, detail)
	if err != nil {
		return fmt.Errorf("warm report %s: %w", id, err)
	}
	if kept {
		s.logger.Debug("report cache warmed", zap.String("report_id", id))
	}
	return nil
}

// cacheDetail writes detail to the cache and then drops it again if the
// report was deleted while it was being loaded. kept is false in that case.
func (s *ReportService) cacheDetail(ctx context.Context, id string, detail *models.ReportDetail) (kept bool, err error) {
	if err := s.cache.Set(ctx, CacheKey(id), detail, s.cfg.CacheTTL); err != nil {
		return false, err
	}
	deleted, err := s.cache.Exists(ctx, deletedKey(id))
	if err == nil && !deleted {
		return true, nil
	}
	if invErr := s.cache.Invalidate(ctx, CacheKey(id)); invErr != nil {
		s.logger.Warn("stale report left in cache", zap.String("report_id", id), zap.Error(invErr))
		return false, invErr
	}
	return false, err
}

func (s *ReportService) load(ctx context.Context, id string) (*models.ReportDetail, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, MsgReportNotFound)
		}
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to load report")
	}
	return &models.ReportDetail{
		ID:                  row.ID,
		StudentName:         row.StudentName,
		Registration:        row.Registration,
		StudentActualCourse: row.StudentActualCourse,
		StudentTargetCourse: row.StudentTargetCourse,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
		Generator:           row.Generator(),
		Analysis:            equivalence.Parse(row.Content),
	}, nil
}

func buildDocument(detail *models.ReportDetail) export.Document {
	summary := detail.Analysis
	return export.Document{
		Title: "Relatório de Equivalência Curricular",
		Meta: []export.Field{
			{Label: "Aluno", Value: detail.StudentName},
			{Label: "Matrícula", Value: detail.Registration},
			{Label: "Curso atual", Value: detail.StudentActualCourse},
			{Label: "Curso destino", Value: detail.StudentTargetCourse},
			{Label: "Gerado em", Value: detail.CreatedAt.Format("02/01/2006 15:04")},
			{Label: "Carga eliminada", Value: strconv.Itoa(summary.TotalWorkloadHours) + "h"},
		},
		Columns: []string{"Disciplina", "Carga Horária", "Equivalente a", "Revisar"},
		Sections: []export.Section{
			{Title: "Disciplinas equivalentes", Rows: subjectRows(summary.EquivalentSubjects)},
			{Title: "Disciplinas pendentes", Rows: subjectRows(summary.PendingSubjects)},
		},
		Notes: summary.Notes,
	}
}

func subjectRows(subjects []models.SubjectRecord) [][]string {
	rows := make([][]string, 0, len(subjects))
	for _, subject := range subjects {
		equivalent := ""
		if subject.EquivalentTo != nil {
			equivalent = *subject.EquivalentTo
		}
		review := ""
		if subject.NeedsReview {
			review = "sim"
		}
		rows = append(rows, []string{subject.Name, strconv.Itoa(subject.Workload) + "h", equivalent, review})
	}
	return rows
}

func exportFilename(detail *models.ReportDetail, format string) string {
	return fmt.Sprintf("equivalencia-%s.%s", detail.ID, format)
}

// canonicalID accepts any form uuid.Parse does (braces, urn prefix, upper
// case) and returns the lower-case hyphenated form stored in the database.
func canonicalID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrNotFound, MsgReportNotFound)
	}
	return parsed.String(), nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
