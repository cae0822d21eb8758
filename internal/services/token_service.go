package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/opal-spaces/opal-backend/internal/config"
	"github.com/opal-spaces/opal-backend/internal/models"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// AccessClaims is the verified payload of an access token.
type AccessClaims struct {
	UserID uuid.UUID
	Role   string
}

// TokenService signs and verifies the three token kinds. Each kind uses its
// own secret so compromise of one does not compromise the others.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	emailSecret   []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	emailExpiry   time.Duration
}

func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.JWTAccessSecret),
		refreshSecret: []byte(cfg.JWTRefreshSecret),
		emailSecret:   []byte(cfg.JWTEmailSecret),
		accessExpiry:  cfg.JWTAccessExpiry,
		refreshExpiry: cfg.JWTRefreshExpiry,
		emailExpiry:   cfg.JWTEmailExpiry,
	}
}

// IssueAccess signs a short-lived bearer token carrying id and role.
func (t *TokenService) IssueAccess(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(t.accessExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.accessSecret)
}

// IssueRefresh signs a long-lived token carrying the user id. The jti makes
// every token unique, so rotation supersedes the previous session even when
// two logins land within the same second.
func (t *TokenService) IssueRefresh(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(t.refreshExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.refreshSecret)
}

// IssueEmailToken signs a single-purpose verification token for the address.
func (t *TokenService) IssueEmailToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(t.emailExpiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.emailSecret)
}

func (t *TokenService) VerifyAccess(token string) (*AccessClaims, error) {
	claims, err := t.parse(token, t.accessSecret)
	if err != nil {
		return nil, err
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return nil, ErrTokenInvalid
	}
	return &AccessClaims{UserID: id, Role: role}, nil
}

func (t *TokenService) VerifyRefresh(token string) (uuid.UUID, error) {
	claims, err := t.parse(token, t.refreshSecret)
	if err != nil {
		return uuid.Nil, err
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}

func (t *TokenService) VerifyEmailToken(token string) (string, error) {
	claims, err := t.parse(token, t.emailSecret)
	if err != nil {
		return "", err
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return "", ErrTokenInvalid
	}
	return email, nil
}

func (t *TokenService) parse(tokenStr string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tk.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
