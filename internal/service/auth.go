package service

import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/pixelmags/internal/server"
)

// AuthService configures Clerk with the secret key from config. Without a
// key the API runs unauthenticated and Enabled reports false.
type AuthService struct {
	server  *server.Server
	enabled bool
}

func NewAuthService(s *server.Server) *AuthService {
	key := s.Config.Auth.SecretKey
	if key != "" {
		clerk.SetKey(key)
	}

	return &AuthService{
		server:  s,
		enabled: key != "",
	}
}

func (a *AuthService) Enabled() bool {
	return a.enabled
}
