package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/equivalence-api/internal/equivalence"
	"github.com/noah-isme/equivalence-api/internal/models"
	appErrors "github.com/noah-isme/equivalence-api/pkg/errors"
	"github.com/noah-isme/equivalence-api/pkg/jobs"
)

// Messages returned to the client by the analysis flow.
const (
	MsgMissingFiles     = "Ambos os arquivos PDF (aluno e opcionais) são necessários."
	MsgMissingFields    = "Todos os campos do formulário são obrigatórios: nome do aluno, matrícula, curso atual e curso destino."
	MsgAnalysisComplete = "Análise concluída e salva com sucesso."
)

// JobTypeReportWarmup identifies cache warm-up jobs.
const JobTypeReportWarmup = "report_warmup"

type textExtractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type equivalenceAnalyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

type reportWriter interface {
	Create(ctx context.Context, report *models.Report) error
}

type warmupDispatcher interface {
	TryEnqueue(job jobs.Job) error
}

// AnalysisConfig bounds the inputs accepted by AnalysisService.
type AnalysisConfig struct {
	MaxFileSizeBytes int64
	MaxInputChars    int
}

// AnalysisService runs extraction, prompt construction, analysis and
// persistence for one request.
type AnalysisService struct {
	extractor textExtractor
	analyzer  equivalenceAnalyzer
	reports   reportWriter
	warmups   warmupDispatcher
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       AnalysisConfig
}

// NewAnalysisService constructs the orchestrator. warmups and metrics may be nil.
func NewAnalysisService(extractor textExtractor, analyzer equivalenceAnalyzer, reports reportWriter, warmups warmupDispatcher, metrics *MetricsService, logger *zap.Logger, cfg AnalysisConfig) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		extractor: extractor,
		analyzer:  analyzer,
		reports:   reports,
		warmups:   warmups,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

// Analyze validates the request, extracts the documents concurrently, asks
// the analyzer for a verdict and persists exactly one report on success.
func (s *AnalysisService) Analyze(ctx context.Context, req models.AnalysisRequest, auth models.AuthContext) (*models.AnalysisResult, error) {
	if err := s.validate(req); err != nil {
		s.metrics.RecordAnalysis(OutcomeValidation)
		return nil, err
	}

	studentText, baseText, certificateText, err := s.extractAll(ctx, req)
	if err != nil {
		if errors.Is(err, appErrors.ErrExtraction) {
			s.metrics.RecordAnalysis(OutcomeExtraction)
		}
		return nil, err
	}

	total := utf8.RuneCountInString(studentText) + utf8.RuneCountInString(baseText) + utf8.RuneCountInString(certificateText)
	if s.cfg.MaxInputChars > 0 && total > s.cfg.MaxInputChars {
		s.metrics.RecordAnalysis(OutcomeValidation)
		return nil, appErrors.Clone(appErrors.ErrValidation, "os documentos enviados excedem o tamanho máximo suportado para análise")
	}

	prompt := equivalence.BuildPrompt(studentText, baseText, certificateText)

	start := time.Now()
	content, err := s.analyzer.Analyze(ctx, prompt)
	s.metrics.ObserveAnalyzer(time.Since(start))
	if err != nil {
		s.metrics.RecordAnalysis(OutcomeAnalyzer)
		s.logger.Error("analyzer call failed", zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrAnalysisService, err, "")
	}

	report := &models.Report{
		Content:             content,
		StudentName:         strings.TrimSpace(req.StudentName),
		Registration:        strings.TrimSpace(req.Registration),
		StudentActualCourse: strings.TrimSpace(req.CurrentCourse),
		StudentTargetCourse: strings.TrimSpace(req.TargetCourse),
		GeneratorID:         auth.GeneratorID(),
	}
	if err := s.reports.Create(ctx, report); err != nil {
		s.metrics.RecordAnalysis(OutcomePersistence)
		s.logger.Error("failed to persist report", zap.Error(err))
		return nil, appErrors.WrapAs(appErrors.ErrPersistence, err, "failed to save the analysis report")
	}

	summary := equivalence.Parse(content)
	s.metrics.RecordAnalysis(OutcomeSuccess)
	s.metrics.RecordSubjects(summary.EquivalentCount, summary.PendingCount)
	s.enqueueWarmup(report.ID)
	s.logger.Info("analysis completed",
		zap.String("report_id", report.ID),
		zap.Bool("authenticated", auth.Authenticated()),
		zap.Bool("certificates", certificateText != ""),
		zap.Int("equivalent", summary.EquivalentCount),
		zap.Int("pending", summary.PendingCount),
		zap.Int("needs_review", summary.ReviewCount))

	return &models.AnalysisResult{
		AnalysisResult: content,
		ReportID:       report.ID,
		Message:        MsgAnalysisComplete,
	}, nil
}

func (s *AnalysisService) validate(req models.AnalysisRequest) error {
	if !hasData(req.StudentTranscript) || !hasData(req.BaseCurriculum) {
		return appErrors.Clone(appErrors.ErrValidation, MsgMissingFiles)
	}
	for _, field := range []string{req.StudentName, req.Registration, req.CurrentCourse, req.TargetCourse} {
		if strings.TrimSpace(field) == "" {
			return appErrors.Clone(appErrors.ErrValidation, MsgMissingFields)
		}
	}
	if s.cfg.MaxFileSizeBytes > 0 {
		for _, file := range []*models.UploadedFile{req.StudentTranscript, req.BaseCurriculum, req.Certificates} {
			if file != nil && int64(len(file.Data)) > s.cfg.MaxFileSizeBytes {
				return appErrors.Clone(appErrors.ErrValidation, "o arquivo "+file.Filename+" excede o tamanho máximo permitido")
			}
		}
	}
	return nil
}

// extractAll runs the extractions concurrently. The first failure cancels the
// remaining ones.
func (s *AnalysisService) extractAll(ctx context.Context, req models.AnalysisRequest) (student, base, certificates string, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		student, err = s.extract(gctx, "student", req.StudentTranscript)
		return err
	})
	g.Go(func() error {
		var err error
		base, err = s.extract(gctx, "base", req.BaseCurriculum)
		return err
	})
	if hasData(req.Certificates) {
		g.Go(func() error {
			var err error
			certificates, err = s.extract(gctx, "certificates", req.Certificates)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return "", "", "", err
	}
	return student, base, certificates, nil
}

func (s *AnalysisService) extract(ctx context.Context, document string, file *models.UploadedFile) (string, error) {
	start := time.Now()
	text, err := s.extractor.Extract(ctx, file.Data)
	s.metrics.ObserveExtraction(document, time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return "", err
		}
		s.logger.Warn("pdf extraction failed",
			zap.String("document", document),
			zap.String("filename", file.Filename),
			zap.Error(err))
		return "", appErrors.WrapAs(appErrors.ErrExtraction, err, "")
	}
	return text, nil
}

func (s *AnalysisService) enqueueWarmup(reportID string) {
	if s.warmups == nil {
		return
	}
	if err := s.warmups.TryEnqueue(jobs.Job{ID: reportID, Type: JobTypeReportWarmup}); err != nil {
		s.logger.Warn("failed to enqueue report warm-up", zap.String("report_id", reportID), zap.Error(err))
	}
}

func hasData(file *models.UploadedFile) bool {
	return file != nil && len(file.Data) > 0
}
