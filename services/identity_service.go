// services/identity_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"propertybooking-backend/models"
	"propertybooking-backend/repository"
	"propertybooking-backend/utils"
)

// Identity is the caller resolved from a bearer token and its profile.
type Identity struct {
	ID       uuid.UUID   `json:"id"`
	Role     models.Role `json:"role"`
	FullName string      `json:"full_name"`
}

// TokenVerifier checks a bearer token with the identity provider and returns
// the user id it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (uuid.UUID, error)
}

type ProfileReader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// IdentityService re-verifies the credential on every request; nothing is
// cached.
type IdentityService struct {
	verifier TokenVerifier
	profiles ProfileReader
}

func NewIdentityService(verifier TokenVerifier, profiles ProfileReader) *IdentityService {
	return &IdentityService{verifier: verifier, profiles: profiles}
}

func (s *IdentityService) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	token, ok := strings.CutPrefix(authorization, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return Identity{}, utils.Unauthenticated("Missing or invalid authorization header")
	}

	userID, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return Identity{}, utils.ErrProfileNotFound
	}
	if err != nil {
		return Identity{}, utils.Internal("Failed to load profile", err)
	}

	return Identity{ID: profile.ID, Role: profile.Role, FullName: profile.FullName}, nil
}

// RequireRole fails with Forbidden unless the identity holds one of roles.
func RequireRole(id Identity, roles ...models.Role) error {
	if slices.Contains(roles, id.Role) {
		return nil
	}
	return utils.ErrForbidden
}

// JWTVerifier validates HS256 access tokens signed with the identity
// provider's JWT secret.
type JWTVerifier struct {
	secret []byte
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, utils.Unauthenticated("Invalid or expired token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, utils.Unauthenticated("Invalid token claims")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, utils.Unauthenticated("Invalid token claims")
	}
	return id, nil
}

// RemoteVerifier asks the identity provider's auth API who a token belongs
// to.
type RemoteVerifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRemoteVerifier(baseURL, apiKey string, client *http.Client) *RemoteVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RemoteVerifier{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, client: client}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (uuid.UUID, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("apikey", v.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return uuid.Nil, fmt.Errorf("identity provider responded %d", resp.StatusCode)
	default:
		return uuid.Nil, utils.Unauthenticated("Invalid or expired token")
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return uuid.Nil, fmt.Errorf("decode identity provider user: %w", err)
	}
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return uuid.Nil, utils.Unauthenticated("Invalid or expired token")
	}
	return id, nil
}
