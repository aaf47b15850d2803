package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bantuankita/bantuankita/domain/model"
	"github.com/bantuankita/bantuankita/domain/port/inbound"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidToken = errors.New("invalid token")
)

const defaultAdminUsername = "admin"

type authService struct {
	userRepo     outbound.UserRepository
	crypto       outbound.CryptoService
	logger       outbound.Logger
	jwtSecret    string
	jwtExpiry    time.Duration
	adminName    string
	userDatabase *model.UserDatabase
	mu           sync.Mutex
}

func NewAuthService(
	userRepo outbound.UserRepository,
	crypto outbound.CryptoService,
	logger outbound.Logger,
	jwtSecret string,
	jwtExpiryMinutes int,
	adminUsername string, // account created by BootstrapAdmin, "admin" when empty
) inbound.AuthService {
	return &authService{
		userRepo:  userRepo,
		crypto:    crypto,
		logger:    logger,
		jwtSecret: jwtSecret,
		jwtExpiry: time.Duration(jwtExpiryMinutes) * time.Minute,
		adminName: adminUsername,
	}
}

func (s *authService) Login(username, password string) (*model.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadDatabase(); err != nil {
		return nil, "", err
	}

	user, exists := s.userDatabase.Users[username]
	if !exists {
		return nil, "", model.ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, "", model.ErrUserDisabled
	}

	if !s.crypto.VerifyPassword(password, user.PasswordHash, user.Salt) {
		s.logger.Warn("Failed login attempt", "username", username)
		return nil, "", model.ErrInvalidCredentials
	}

	// tokens issued before this instant are no longer accepted
	now := time.Now().Truncate(time.Second)
	user.LastValidLogin = now
	user.LastLogin = now
	if err := s.saveDatabase(); err != nil {
		s.logger.Error("Failed to persist login time", "username", username, "error", err)
	}

	token, err := s.generateToken(user, now)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *authService) ValidateToken(tokenString string) (*model.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	username, ok := claims["username"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	iatFloat, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	issuedAt := time.Unix(int64(iatFloat), 0)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadDatabase(); err != nil {
		return nil, err
	}

	user, exists := s.userDatabase.Users[username]
	if !exists {
		return nil, ErrUserNotFound
	}

	if !user.Enabled {
		return nil, model.ErrUserDisabled
	}

	if issuedAt.Before(user.LastValidLogin) {
		return nil, ErrInvalidToken
	}

	return user, nil
}

func (s *authService) CreateUser(username, password string, role model.UserRole) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUser(username, password, role)
}

func (s *authService) createUser(username, password string, role model.UserRole) (*model.User, error) {
	if err := s.loadDatabase(); err != nil {
		return nil, err
	}

	if _, exists := s.userDatabase.Users[username]; exists {
		return nil, model.ErrUserExists
	}

	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: s.crypto.HashPassword(password, salt),
		Salt:         salt,
		Role:         role,
		CreatedAt:    time.Now(),
		Enabled:      true,
	}

	s.userDatabase.Users[username] = user

	if err := s.saveDatabase(); err != nil {
		delete(s.userDatabase.Users, username)
		return nil, err
	}

	return user, nil
}

func (s *authService) GetUser(username string) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadDatabase(); err != nil {
		return nil, false
	}

	user, exists := s.userDatabase.Users[username]
	return user, exists
}

func (s *authService) ListUsers() ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadDatabase(); err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(s.userDatabase.Users))
	for _, user := range s.userDatabase.Users {
		users = append(users, user)
	}

	return users, nil
}

// BootstrapAdmin creates the first admin with a random password.
// It refuses once any user exists.
func (s *authService) BootstrapAdmin() (*model.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadDatabase(); err != nil {
		return nil, "", err
	}

	if len(s.userDatabase.Users) > 0 {
		return nil, "", model.ErrAdminExists
	}

	plainPassword, err := generateSecurePassword()
	if err != nil {
		return nil, "", err
	}

	username := s.adminName
	if username == "" {
		username = defaultAdminUsername
	}

	admin, err := s.createUser(username, plainPassword, model.RoleAdmin)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Bootstrap admin created", "username", admin.Username)
	return admin, plainPassword, nil
}

func (s *authService) loadDatabase() error {
	if s.userDatabase != nil {
		return nil
	}

	db, err := s.userRepo.Load()
	if err != nil {
		if errors.Is(err, model.ErrUserDatabaseNotFound) {
			s.userDatabase = &model.UserDatabase{
				Users: make(map[string]*model.User),
				Salt:  s.crypto.GenerateSalt(),
			}
			return nil
		}
		return err
	}

	if db.Users == nil {
		db.Users = make(map[string]*model.User)
	}
	for _, user := range db.Users {
		if user.LastValidLogin.IsZero() {
			user.LastValidLogin = user.CreatedAt
		}
	}

	s.userDatabase = db
	return nil
}

func (s *authService) saveDatabase() error {
	return s.userRepo.Save(s.userDatabase)
}

func (s *authService) generateToken(user *model.User, issuedAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"username": user.Username,
		"role":     user.Role,
		"exp":      issuedAt.Add(s.jwtExpiry).Unix(),
		"iat":      issuedAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func generateSecurePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"
	const length = 16

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}

	password := make([]byte, length)
	for i, b := range buf {
		password[i] = charset[int(b)%len(charset)]
	}
	return string(password), nil
}
