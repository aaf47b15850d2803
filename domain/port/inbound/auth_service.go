package inbound

import (
	"github.com/bantuankita/bantuankita/domain/model"
)

// AuthService authenticates panel administrators
type AuthService interface {
	Login(username, password string) (*model.User, string, error) // user, token, error
	ValidateToken(token string) (*model.User, error)
	CreateUser(username, password string, role model.UserRole) (*model.User, error)
	GetUser(username string) (*model.User, bool)
	ListUsers() ([]*model.User, error)
	BootstrapAdmin() (*model.User, string, error) // user, plainPassword, error
}
