package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/equivalence-api/internal/middleware"
	"github.com/noah-isme/equivalence-api/internal/models"
	appErrors "github.com/noah-isme/equivalence-api/pkg/errors"
)

type authServiceMock struct {
	registerReq models.RegisterRequest
	res         *models.AuthResponse
	profile     *models.ProfileResponse
	profileID   string
	err         error
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	m.registerReq = req
	return m.res, m.err
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	return m.res, m.err
}

func (m *authServiceMock) Profile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	m.profileID = userID
	return m.profile, m.err
}

func TestAuthHandlerRegisterCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{res: &models.AuthResponse{Token: "tok", User: models.UserInfo{ID: "1", Name: "Ana", Email: "ana@example.com"}}}
	handler := NewAuthHandler(mockSvc)

	payload, _ := json.Marshal(models.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	c, w := newGinContext(http.MethodPost, "/api/auth/register", payload)
	handler.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Ana", mockSvc.registerReq.Name)
	body := decodeBody(t, w)
	assert.Equal(t, "tok", body["token"])
	assert.Equal(t, "ana@example.com", body["user"].(map[string]interface{})["email"])
}

func TestAuthHandlerRegisterMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{})

	c, w := newGinContext(http.MethodPost, "/api/auth/register", []byte("{"))
	handler.Register(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeBody(t, w)["code"])
}

func TestAuthHandlerRegisterConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "email already registered")})

	payload, _ := json.Marshal(models.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	c, w := newGinContext(http.MethodPost, "/api/auth/register", payload)
	handler.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{err: appErrors.ErrInvalidCredentials})

	payload, _ := json.Marshal(models.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	c, w := newGinContext(http.MethodPost, "/api/auth/login", payload)
	handler.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Message, decodeBody(t, w)["error"])
}

func TestAuthHandlerLoginSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{res: &models.AuthResponse{Token: "tok"}})

	payload, _ := json.Marshal(models.LoginRequest{Email: "ana@example.com", Password: "secret1"})
	c, w := newGinContext(http.MethodPost, "/api/auth/login", payload)
	handler.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", decodeBody(t, w)["token"])
}

func TestAuthHandlerProfileRequiresAuthentication(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&authServiceMock{})

	c, w := newGinContext(http.MethodGet, "/api/auth/profile", nil)
	handler.Profile(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &authServiceMock{profile: &models.ProfileResponse{User: models.UserInfo{ID: "user-1", Name: "Ana"}}}
	handler := NewAuthHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/api/auth/profile", nil)
	c.Set(middleware.ContextAuthKey, models.AuthContext{UserID: "user-1"})
	handler.Profile(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", mockSvc.profileID)
	assert.Equal(t, "Ana", decodeBody(t, w)["user"].(map[string]interface{})["name"])
}
