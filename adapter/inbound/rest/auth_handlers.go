package rest

import (
	"errors"
	"net/http"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type AuthHandler struct {
	authService inbound.AuthService
	logger      outbound.Logger
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *model.UserResponse `json:"user"`
	Token string              `json:"token"`
}

type CreateUserRequest struct {
	Username string         `json:"username"`
	Password string         `json:"password"`
	Role     model.UserRole `json:"role"`
}

type BootstrapResponse struct {
	Admin    *model.UserResponse `json:"admin"`
	Password string              `json:"password"`
	Message  string              `json:"message"`
}

func NewAuthHandler(authService inbound.AuthService, logger outbound.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.Error("Failed to decode login request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	user, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		h.logger.Warn("Login failed", "username", req.Username, "error", err)
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.logger.Info("User logged in", "username", user.Username)

	writeJSON(w, http.StatusOK, LoginResponse{
		User:  user.ToResponse(),
		Token: token,
	})
}

// CreateUser adds a panel account; the role defaults to moderator
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		h.logger.Error("Failed to decode create user request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Username and password required")
		return
	}

	switch req.Role {
	case "":
		req.Role = model.RoleModerator
	case model.RoleAdmin, model.RoleModerator:
	default:
		writeError(w, http.StatusBadRequest, "Unknown role")
		return
	}

	user, err := h.authService.CreateUser(req.Username, req.Password, req.Role)
	if err != nil {
		h.logger.Error("Failed to create user", "username", req.Username, "error", err)
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrUserExists) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	h.logger.Info("User created", "username", user.Username, "role", user.Role)

	writeJSON(w, http.StatusCreated, user.ToResponse())
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers()
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	out := make([]*model.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToResponse())
	}
	writeJSON(w, http.StatusOK, out)
}

// Bootstrap creates the first admin account. It only works while no user exists.
func (h *AuthHandler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers()
	if err != nil {
		h.logger.Error("Bootstrap check failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if len(users) > 0 {
		h.logger.Warn("Bootstrap attempted but users already exist", "remote", r.RemoteAddr)
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":   "bootstrap_not_needed",
			"message": "Users already exist. Bootstrap not needed.",
		})
		return
	}

	admin, password, err := h.authService.BootstrapAdmin()
	if err != nil {
		h.logger.Error("Bootstrap failed", "error", err)
		status := http.StatusBadRequest
		if errors.Is(err, model.ErrAdminExists) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}

	h.logger.Info("Admin bootstrapped", "username", admin.Username)

	writeJSON(w, http.StatusOK, BootstrapResponse{
		Admin:    admin.ToResponse(),
		Password: password,
		Message:  "Admin account created. Save this password - it will not be shown again!",
	})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusNotFound, "No authenticated user")
		return
	}

	writeJSON(w, http.StatusOK, user.ToResponse())
}
