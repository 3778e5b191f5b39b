package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/equivalence-api/internal/middleware"
	"github.com/noah-isme/equivalence-api/internal/models"
	appErrors "github.com/noah-isme/equivalence-api/pkg/errors"
	"github.com/noah-isme/equivalence-api/pkg/response"
)

// Multipart field names.
const (
	FieldStudentTranscript = "pdf_aluno"
	FieldBaseCurriculum    = "pdf_opcionais"
	FieldCertificates      = "pdf_certificacoes"
)

const multipartMemory = 32 << 20

type analysisService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest, auth models.AuthContext) (*models.AnalysisResult, error)
}

// AnalysisHandler accepts uploaded documents and runs an equivalence analysis.
type AnalysisHandler struct {
	service analysisService
}

// NewAnalysisHandler constructs the handler.
func NewAnalysisHandler(svc analysisService) *AnalysisHandler {
	return &AnalysisHandler{service: svc}
}

// Analyze godoc
// @Summary Run an equivalence analysis
// @Description Extracts the uploaded PDFs, asks the analyzer for a verdict and stores the report
// @Tags Analysis
// @Accept multipart/form-data
// @Produce json
// @Param pdf_aluno formData file true "Student transcript"
// @Param pdf_opcionais formData file true "Base curriculum"
// @Param pdf_certificacoes formData file false "Certificates"
// @Param studentName formData string true "Student name"
// @Param registration formData string true "Registration number"
// @Param currentCourse formData string true "Current course"
// @Param targetCourse formData string true "Target course"
// @Success 200 {object} models.AnalysisResult
// @Failure 400 {object} response.ErrorBody
// @Failure 413 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /api/analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "invalid multipart payload"))
		return
	}

	req := models.AnalysisRequest{
		StudentName:   c.PostForm("studentName"),
		Registration:  c.PostForm("registration"),
		CurrentCourse: c.PostForm("currentCourse"),
		TargetCourse:  c.PostForm("targetCourse"),
	}

	var err error
	if req.StudentTranscript, err = readUpload(c.Request.MultipartForm, FieldStudentTranscript); err == nil {
		if req.BaseCurriculum, err = readUpload(c.Request.MultipartForm, FieldBaseCurriculum); err == nil {
			req.Certificates, err = readUpload(c.Request.MultipartForm, FieldCertificates)
		}
	}
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.WrapAs(appErrors.ErrValidation, err, "failed to read uploaded file"))
		return
	}

	res, err := h.service.Analyze(c.Request.Context(), req, authContextFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, res)
}

// readUpload returns the first file under field, or nil when absent.
func readUpload(form *multipart.Form, field string) (*models.UploadedFile, error) {
	if form == nil || len(form.File[field]) == 0 {
		return nil, nil
	}
	header := form.File[field][0]
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &models.UploadedFile{Filename: header.Filename, Data: data}, nil
}
