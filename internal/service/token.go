package service

import (
	"fmt"
	"strconv"
	"time"

	"inkpress/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "inkpress-api"
	tokenAudience = "inkpress-client"
	tokenTTL      = 7 * 24 * time.Hour
)

// Claims are the identity facts carried by an access token.
type Claims struct {
	UserID uint
	Role   models.Role
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager returns a manager signing with secret.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: tokenTTL, now: time.Now}
}

// Issue signs a token for user.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"iss":  tokenIssuer,
		"aud":  tokenAudience,
		"exp":  now.Add(m.ttl).Unix(),
		"iat":  now.Unix(),
		"nbf":  now.Unix(),
		"jti":  generateJTI(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return signed, nil
}

func generateJTI(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8])
}

// Parse verifies raw and returns its claims.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, models.NewUnauthorizedError("Invalid token subject")
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return nil, models.NewUnauthorizedError("Invalid token subject")
	}

	role := models.RoleMember
	if r, ok := claims["role"].(string); ok && models.Role(r).Valid() {
		role = models.Role(r)
	}
	return &Claims{UserID: uint(id), Role: role}, nil
}
