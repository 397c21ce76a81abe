package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

type Service struct {
	repo     *Repository
	secret   string
	tokenTTL time.Duration
}

func NewService(repo *Repository, secret string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// HashPassword applies bcrypt with the default work factor (10).
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Login authenticates the admin and issues a bearer token. Unknown username
// and wrong password return the same error so the response does not reveal
// which accounts exist.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	admin, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(req.Password, admin.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, admin, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Success: true,
		Token:   token,
		User: UserInfo{
			ID:       admin.ID,
			Username: admin.Username,
			Role:     RoleAdmin,
		},
	}, nil
}

// VerifyToken checks signature and expiry against the current secret.
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	return ParseToken(s.secret, tokenString)
}

// EnsureDefaultAdmin seeds the admin account at first boot if absent, so
// login works on an empty database.
func (s *Service) EnsureDefaultAdmin(ctx context.Context) error {
	_, err := s.repo.GetByUsername(ctx, defaultAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrAdminNotFound) {
		return err
	}

	hashed, err := HashPassword(defaultAdminPassword)
	if err != nil {
		return err
	}

	return s.repo.Create(ctx, &Admin{
		Username: defaultAdminUsername,
		Password: hashed,
	})
}
