package service

import (
	"log"
	"strings"

	"github.com/terravia/terravia-backend/internal/domain"
	"github.com/terravia/terravia-backend/internal/util"
)

// IdentityService answers "who is calling" for a single request. It wraps
// token verification and fails open: any missing, malformed, or expired token
// resolves to the anonymous identity rather than an error, so favorites and
// review naming keep working for signed-out visitors.
type IdentityService struct {
	jwt *util.JWTManager
}

func NewIdentityService(jwt *util.JWTManager) *IdentityService {
	return &IdentityService{jwt: jwt}
}

// Resolve maps a raw bearer token to an Identity. Call it once per
// operation; authentication state can change between requests and is never
// cached here.
func (s *IdentityService) Resolve(token string) domain.Identity {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Anonymous
	}
	claims, err := s.jwt.Parse(token)
	if err != nil {
		log.Printf("identity: treating caller as anonymous: %v", err)
		return domain.Anonymous
	}
	return domain.AuthenticatedIdentity(claims.UserID)
}
