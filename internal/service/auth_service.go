package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// OwnerCredential is one API key accepted by the token endpoint.
type OwnerCredential struct {
	OwnerID string
	Role    models.UserRole
	// Hash is the bcrypt hash of the API key.
	Hash string
}

// AuthConfig defines configuration for token issuing.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	Credentials       []OwnerCredential
}

// AuthService exchanges owner API keys for access tokens and validates them.
type AuthService struct {
	credentials map[string]OwnerCredential
	validator   *validator.Validate
	logger      *zap.Logger
	config      AuthConfig
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	credentials := make(map[string]OwnerCredential, len(config.Credentials))
	for _, cred := range config.Credentials {
		if cred.Role == "" {
			cred.Role = models.RoleAdmin
		}
		credentials[cred.OwnerID] = cred
	}
	return &AuthService{
		credentials: credentials,
		validator:   validate,
		logger:      logger,
		config:      config,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// IssueToken checks the API key of an owner and returns a signed access token.
func (s *AuthService) IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid token payload")
	}

	cred, ok := s.credentials[req.OwnerID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid owner or api key")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.Hash), []byte(req.APIKey)); err != nil {
		s.logger.Warn("api key rejected", zap.String("owner_id", req.OwnerID))
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid owner or api key")
	}

	issuedAt := s.now()
	token, err := s.sign(cred, issuedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	s.logger.Info("access token issued", zap.String("owner_id", cred.OwnerID), zap.String("role", string(cred.Role)))
	return &models.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		OwnerID:     cred.OwnerID,
		Role:        cred.Role,
		IssuedAt:    issuedAt,
	}, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid || claims.OwnerID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) sign(cred OwnerCredential, issuedAt time.Time) (string, error) {
	claims := &models.JWTClaims{
		OwnerID: cred.OwnerID,
		Role:    cred.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   cred.OwnerID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
