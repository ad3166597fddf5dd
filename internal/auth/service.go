package auth

import (
	"errors"

	"github.com/mrlokans/kindle-notebook/internal/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordLoginOff   = errors.New("password login is not configured")
)

// Service checks credentials against the configured operator account.
type Service struct {
	config config.Auth
}

func NewService(cfg config.Auth) *Service {
	return &Service{config: cfg}
}

// Enabled reports whether requests need credentials at all.
func (s *Service) Enabled() bool {
	return s.config.Mode == config.AuthModeLocal
}

// Authenticate validates a username and password. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(username, password string) error {
	if s.config.Username == "" || s.config.PasswordHash == "" {
		return ErrPasswordLoginOff
	}

	userOK := tokensEqual(username, s.config.Username)
	err := CheckPassword(password, s.config.PasswordHash)
	if err != nil && !errors.Is(err, ErrInvalidPassword) {
		return err
	}
	if !userOK || err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// ValidateToken reports whether token is the configured API token.
func (s *Service) ValidateToken(token string) bool {
	if s.config.APIToken == "" || token == "" {
		return false
	}
	return tokensEqual(token, s.config.APIToken)
}

// Username is the configured operator name, used as the identity of bearer requests.
func (s *Service) Username() string {
	if s.config.Username == "" {
		return "api"
	}
	return s.config.Username
}
