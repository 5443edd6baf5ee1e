package handler

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/lms-api/internal/middleware"
	"github.com/learnhub/lms-api/internal/models"
	appErrors "github.com/learnhub/lms-api/pkg/errors"
)

type authServiceMock struct {
	registerResp *models.UserInfo
	registerErr  error
	loginResp    *models.LoginResponse
	loginErr     error
	meResp       *models.UserInfo
	meErr        error

	lastEmail  string
	lastUserID string
}

func (m *authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.UserInfo, error) {
	m.lastEmail = req.Email
	return m.registerResp, m.registerErr
}

func (m *authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.lastEmail = req.Email
	return m.loginResp, m.loginErr
}

func (m *authServiceMock) Me(ctx context.Context, userID string) (*models.UserInfo, error) {
	m.lastUserID = userID
	return m.meResp, m.meErr
}

func TestAuthHandlerRegister(t *testing.T) {
	mockSvc := &authServiceMock{
		registerResp: &models.UserInfo{ID: "user-1", Email: "ada@example.com"},
	}
	handler := NewAuthHandler(mockSvc)

	c, w := newEnrollmentTestContext(t)
	payload := `{"full_name":"Ada Lovelace","email":"ada@example.com","password":"secret123"}`
	req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Register(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ada@example.com", mockSvc.lastEmail)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	mockSvc := &authServiceMock{loginErr: appErrors.ErrInvalidCredentials}
	handler := NewAuthHandler(mockSvc)

	c, w := newEnrollmentTestContext(t)
	payload := `{"email":"ada@example.com","password":"wrong"}`
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Login(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerMe(t *testing.T) {
	mockSvc := &authServiceMock{
		meResp: &models.UserInfo{ID: "user-1", Email: "ada@example.com", Role: models.RoleStudent},
	}
	handler := NewAuthHandler(mockSvc)

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/user/me", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})

	handler.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", mockSvc.lastUserID)
}

func TestAuthHandlerMeUnauthenticated(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})

	c, w := newEnrollmentTestContext(t)
	req, _ := http.NewRequest(http.MethodGet, "/user/me", nil)
	c.Request = req

	handler.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
