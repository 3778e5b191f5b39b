package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/equivalence-api/internal/models"
	appErrors "github.com/noah-isme/equivalence-api/pkg/errors"
	"github.com/noah-isme/equivalence-api/pkg/jobs"
)

const (
	reportID      = "6f1c2d4e-8a9b-4c3d-9e2f-1a2b3c4d5e6f"
	otherReportID = "0d5e8a1b-2c3d-4e5f-8a9b-0c1d2e3f4a5b"
	sampleContent = "Disciplina,Status,Equivalente a,Carga Horária\n" +
		"Cálculo I,Equivalente,Cálculo Diferencial,60h\n" +
		"Física I,Não Equivalente,,80h\n"
)

type fakeReportStore struct {
	rows      map[string]*models.ReportRow
	order     []string
	getCalls  int
	listErr   error
	deleteErr error
}

func newFakeReportStore() *fakeReportStore {
	generator := "user-1"
	now := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)
	store := &fakeReportStore{rows: map[string]*models.ReportRow{}}
	store.add(&models.ReportRow{
		Report: models.Report{
			ID: reportID, Content: sampleContent, StudentName: "Ana", Registration: "2024001",
			StudentActualCourse: "ADS", StudentTargetCourse: "SI", GeneratorID: &generator,
			CreatedAt: now, UpdatedAt: now,
		},
		GeneratorName:  sql.NullString{String: "Prof", Valid: true},
		GeneratorEmail: sql.NullString{String: "prof@example.com", Valid: true},
	})
	store.add(&models.ReportRow{
		Report: models.Report{
			ID: otherReportID, Content: strings.Repeat("á", 400), StudentName: "Bia",
			CreatedAt: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
		},
	})
	return store
}

func (f *fakeReportStore) add(row *models.ReportRow) {
	f.rows[row.ID] = row
	f.order = append(f.order, row.ID)
}

func (f *fakeReportStore) List(ctx context.Context) ([]models.ReportRow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.ReportRow, 0, len(f.order))
	for _, id := range f.order {
		if row, ok := f.rows[id]; ok {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeReportStore) GetByID(ctx context.Context, id string) (*models.ReportRow, error) {
	f.getCalls++
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return row, nil
}

func (f *fakeReportStore) Delete(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if _, ok := f.rows[id]; !ok {
		return false, nil
	}
	delete(f.rows, id)
	return true, nil
}

func newTestReportService(store reportStore, cacheRepo CacheRepository) *ReportService {
	var cache *CacheService
	if cacheRepo != nil {
		cache = NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	}
	return NewReportService(store, cache, nil, nil, zap.NewNop(), ReportServiceConfig{CacheTTL: time.Minute})
}

func TestReportServiceList(t *testing.T) {
	svc := newTestReportService(newFakeReportStore(), nil)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	require.Len(t, list.Reports, 2)

	first := list.Reports[0]
	assert.Equal(t, reportID, first.ID)
	require.NotNil(t, first.Generator)
	assert.Equal(t, "prof@example.com", first.Generator.Email)
	assert.Equal(t, sampleContent, first.ContentPreview)

	second := list.Reports[1]
	assert.Nil(t, second.Generator)
	assert.Equal(t, previewRunes, len([]rune(second.ContentPreview)))
}

func TestReportServiceListError(t *testing.T) {
	store := newFakeReportStore()
	store.listErr = errors.New("db down")
	svc := newTestReportService(store, nil)

	_, err := svc.List(context.Background())
	assert.Equal(t, 500, appErrors.FromError(err).Status)
}

func TestReportServiceGetParsesContent(t *testing.T) {
	svc := newTestReportService(newFakeReportStore(), nil)

	detail, err := svc.Get(context.Background(), reportID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", detail.StudentName)
	assert.Equal(t, 1, detail.Analysis.EquivalentCount)
	assert.Equal(t, 1, detail.Analysis.PendingCount)
	assert.Equal(t, 60, detail.Analysis.TotalWorkloadHours)
	assert.Equal(t, sampleContent, detail.Analysis.RawContent)
	require.NotNil(t, detail.Generator)
	assert.Equal(t, "Prof", detail.Generator.Name)
}

func TestReportServiceGetNotFound(t *testing.T) {
	svc := newTestReportService(newFakeReportStore(), nil)

	_, err := svc.Get(context.Background(), "2b7e1f0a-0000-4000-8000-000000000000")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Get(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceGetReadsThroughCache(t *testing.T) {
	store := newFakeReportStore()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestReportService(store, cacheRepo)

	first, err := svc.Get(context.Background(), reportID)
	require.NoError(t, err)
	assert.True(t, cacheRepo.has(CacheKey(reportID)))

	second, err := svc.Get(context.Background(), reportID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.getCalls)
	assert.Equal(t, first.Analysis.EquivalentCount, second.Analysis.EquivalentCount)
	assert.Equal(t, first.StudentName, second.StudentName)
}

func TestReportServiceDeleteInvalidatesCache(t *testing.T) {
	store := newFakeReportStore()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestReportService(store, cacheRepo)

	_, err := svc.Get(context.Background(), reportID)
	require.NoError(t, err)

	res, err := svc.Delete(context.Background(), reportID)
	require.NoError(t, err)
	assert.Equal(t, reportID, res.DeletedID)
	assert.Equal(t, MsgReportDeleted, res.Message)
	assert.False(t, cacheRepo.has(CacheKey(reportID)))

	_, err = svc.Get(context.Background(), reportID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Delete(context.Background(), reportID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceDeleteStoreError(t *testing.T) {
	store := newFakeReportStore()
	store.deleteErr = errors.New("db down")
	svc := newTestReportService(store, nil)

	_, err := svc.Delete(context.Background(), reportID)
	assert.True(t, errors.Is(err, appErrors.ErrPersistence))
}

func TestReportServiceExportCSV(t *testing.T) {
	svc := newTestReportService(newFakeReportStore(), nil)

	file, err := svc.Export(context.Background(), reportID, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "equivalencia-"+reportID+".csv", file.Filename)
	assert.Contains(t, file.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Disciplinas equivalentes", "Cálculo I", "60h", "Cálculo Diferencial", ""}, records[1])
	assert.Equal(t, "Física I", records[2][1])
}

func TestReportServiceExportPDF(t *testing.T) {
	svc := newTestReportService(newFakeReportStore(), nil)

	file, err := svc.Export(context.Background(), reportID, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))
}

func TestReportServiceExportUnknownFormat(t *testing.T) {
	svc := newTestReportService(newFakeReportStore(), nil)

	_, err := svc.Export(context.Background(), reportID, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestReportServiceHandleWarmup(t *testing.T) {
	store := newFakeReportStore()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestReportService(store, cacheRepo)

	require.NoError(t, svc.HandleWarmup(context.Background(), jobs.Job{ID: reportID, Type: JobTypeReportWarmup}))
	assert.True(t, cacheRepo.has(CacheKey(reportID)))

	require.NoError(t, svc.HandleWarmup(context.Background(), jobs.Job{ID: "2b7e1f0a-0000-4000-8000-000000000000"}))
}

func TestReportServiceHandleWarmupWithoutCache(t *testing.T) {
	store := newFakeReportStore()
	svc := newTestReportService(store, nil)

	require.NoError(t, svc.HandleWarmup(context.Background(), jobs.Job{ID: reportID}))
	assert.Zero(t, store.getCalls)
}

// deleteAfterReadStore deletes a report through the service right after the
// first successful read of it, before the reader gets to write the cache.
type deleteAfterReadStore struct {
	*fakeReportStore
	svc       *ReportService
	fired     bool
	deleteErr error
}

func (s *deleteAfterReadStore) GetByID(ctx context.Context, id string) (*models.ReportRow, error) {
	row, err := s.fakeReportStore.GetByID(ctx, id)
	if err == nil && !s.fired {
		s.fired = true
		_, s.deleteErr = s.svc.Delete(ctx, id)
	}
	return row, err
}

func TestReportServiceGetDoesNotCacheReportDeletedDuringRead(t *testing.T) {
	store := &deleteAfterReadStore{fakeReportStore: newFakeReportStore()}
	cacheRepo := newMemoryCacheRepo()
	svc := newTestReportService(store, cacheRepo)
	store.svc = svc

	detail, err := svc.Get(context.Background(), reportID)
	require.NoError(t, err)
	assert.Equal(t, reportID, detail.ID)
	require.True(t, store.fired)
	require.NoError(t, store.deleteErr)
	assert.False(t, cacheRepo.has(CacheKey(reportID)))

	_, err = svc.Get(context.Background(), reportID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceWarmupDoesNotCacheReportDeletedDuringRead(t *testing.T) {
	store := &deleteAfterReadStore{fakeReportStore: newFakeReportStore()}
	cacheRepo := newMemoryCacheRepo()
	svc := newTestReportService(store, cacheRepo)
	store.svc = svc

	require.NoError(t, svc.HandleWarmup(context.Background(), jobs.Job{ID: reportID, Type: JobTypeReportWarmup}))
	require.True(t, store.fired)
	require.NoError(t, store.deleteErr)
	assert.False(t, cacheRepo.has(CacheKey(reportID)))

	_, err := svc.Get(context.Background(), reportID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestReportServiceNormalisesIDForms(t *testing.T) {
	forms := map[string]string{
		"urn":    "urn:uuid:" + reportID,
		"braces": "{" + reportID + "}",
		"upper":  strings.ToUpper(reportID),
	}
	for name, form := range forms {
		t.Run(name, func(t *testing.T) {
			cacheRepo := newMemoryCacheRepo()
			svc := newTestReportService(newFakeReportStore(), cacheRepo)

			detail, err := svc.Get(context.Background(), form)
			require.NoError(t, err)
			assert.Equal(t, reportID, detail.ID)
			assert.True(t, cacheRepo.has(CacheKey(reportID)))
			assert.False(t, cacheRepo.has(CacheKey(form)))

			res, err := svc.Delete(context.Background(), form)
			require.NoError(t, err)
			assert.Equal(t, reportID, res.DeletedID)
			assert.False(t, cacheRepo.has(CacheKey(reportID)))
		})
	}
}
