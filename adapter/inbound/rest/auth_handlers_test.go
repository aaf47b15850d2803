package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bantuankita/bantuankita/domain/model"
)

func setupAuthHandler() (*AuthHandler, *MockAuthService, *MockAuthLogger) {
	authService := &MockAuthService{}
	logger := &MockAuthLogger{}
	handler := NewAuthHandler(authService, logger.permissive())
	return handler, authService, logger
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	handler, authService, _ := setupAuthHandler()
	testUser := createTestUserModel()
	testUser.PasswordHash = "secret-hash"

	authService.On("Login", "testuser", "password").Return(testUser, "test-token", nil)

	req := httptest.NewRequest("POST", "/api/auth/login", jsonBody(t, LoginRequest{
		Username: "testuser",
		Password: "password",
	}))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")

	var response LoginResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "testuser", response.User.Username)
	assert.Equal(t, model.RoleModerator, response.User.Role)
	assert.Equal(t, "test-token", response.Token)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("Login", "testuser", "wrongpassword").Return(nil, "", model.ErrInvalidCredentials)

	req := httptest.NewRequest("POST", "/api/auth/login", jsonBody(t, LoginRequest{
		Username: "testuser",
		Password: "wrongpassword",
	}))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	req := httptest.NewRequest("POST", "/api/auth/login", jsonBody(t, LoginRequest{Password: "password"}))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	authService.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_InvalidJSON(t *testing.T) {
	handler, _, logger := setupAuthHandler()

	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString("invalid-json"))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	logger.AssertCalled(t, "Error", "Failed to decode login request", mock.Anything)
}

func TestAuthHandler_CreateUser_Success(t *testing.T) {
	handler, authService, _ := setupAuthHandler()
	testUser := createTestAdminModel()

	authService.On("CreateUser", "newuser", "password", model.RoleAdmin).Return(testUser, nil)

	req := httptest.NewRequest("POST", "/api/admin/users", jsonBody(t, CreateUserRequest{
		Username: "newuser",
		Password: "password",
		Role:     model.RoleAdmin,
	}))
	w := httptest.NewRecorder()

	handler.CreateUser(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response model.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "admin", response.Username)
	authService.AssertExpectations(t)
}

func TestAuthHandler_CreateUser_DefaultRole(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("CreateUser", "newuser", "password", model.RoleModerator).Return(createTestUserModel(), nil)

	req := httptest.NewRequest("POST", "/api/admin/users", jsonBody(t, CreateUserRequest{
		Username: "newuser",
		Password: "password",
	}))
	w := httptest.NewRecorder()

	handler.CreateUser(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	authService.AssertExpectations(t)
}

func TestAuthHandler_CreateUser_UnknownRole(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	req := httptest.NewRequest("POST", "/api/admin/users", jsonBody(t, CreateUserRequest{
		Username: "newuser",
		Password: "password",
		Role:     "superuser",
	}))
	w := httptest.NewRecorder()

	handler.CreateUser(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	authService.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_CreateUser_UserExists(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("CreateUser", "existinguser", "password", model.RoleModerator).
		Return(nil, fmt.Errorf("create existinguser: %w", model.ErrUserExists))

	req := httptest.NewRequest("POST", "/api/admin/users", jsonBody(t, CreateUserRequest{
		Username: "existinguser",
		Password: "password",
	}))
	w := httptest.NewRecorder()

	handler.CreateUser(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_ListUsers_Success(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("ListUsers").Return([]*model.User{createTestUserModel(), createTestAdminModel()}, nil)

	req := httptest.NewRequest("GET", "/api/admin/users", nil)
	w := httptest.NewRecorder()

	handler.ListUsers(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []*model.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Len(t, response, 2)
	assert.Equal(t, "testuser", response[0].Username)
}

func TestAuthHandler_ListUsers_Error(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("ListUsers").Return(nil, assert.AnError)

	req := httptest.NewRequest("GET", "/api/admin/users", nil)
	w := httptest.NewRecorder()

	handler.ListUsers(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthHandler_Bootstrap_Success(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("ListUsers").Return([]*model.User{}, nil)
	authService.On("BootstrapAdmin").Return(createTestAdminModel(), "generated-password", nil)

	req := httptest.NewRequest("POST", "/api/auth/bootstrap", nil)
	w := httptest.NewRecorder()

	handler.Bootstrap(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response BootstrapResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "admin", response.Admin.Username)
	assert.Equal(t, "generated-password", response.Password)
	assert.Contains(t, response.Message, "Save this password")
}

func TestAuthHandler_Bootstrap_UsersExist(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("ListUsers").Return([]*model.User{createTestAdminModel()}, nil)

	req := httptest.NewRequest("POST", "/api/auth/bootstrap", nil)
	w := httptest.NewRecorder()

	handler.Bootstrap(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "bootstrap_not_needed")
	authService.AssertNotCalled(t, "BootstrapAdmin")
}

func TestAuthHandler_Bootstrap_ListFails(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("ListUsers").Return(nil, assert.AnError)

	req := httptest.NewRequest("POST", "/api/auth/bootstrap", nil)
	w := httptest.NewRecorder()

	handler.Bootstrap(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	authService.AssertNotCalled(t, "BootstrapAdmin")
}

func TestAuthHandler_Bootstrap_Race(t *testing.T) {
	handler, authService, _ := setupAuthHandler()

	authService.On("ListUsers").Return([]*model.User{}, nil)
	authService.On("BootstrapAdmin").Return(nil, "", model.ErrAdminExists)

	req := httptest.NewRequest("POST", "/api/auth/bootstrap", nil)
	w := httptest.NewRecorder()

	handler.Bootstrap(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_GetProfile_Success(t *testing.T) {
	handler, _, _ := setupAuthHandler()

	req := withUser(httptest.NewRequest("GET", "/api/auth/profile", nil), createTestUserModel())
	w := httptest.NewRecorder()

	handler.GetProfile(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response model.UserResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "testuser", response.Username)
}

func TestAuthHandler_GetProfile_UserNotFound(t *testing.T) {
	handler, _, _ := setupAuthHandler()

	req := httptest.NewRequest("GET", "/api/auth/profile", nil)
	w := httptest.NewRecorder()

	handler.GetProfile(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
