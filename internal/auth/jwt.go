package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"task-kpi-system.com/task-kpi-system/internal/constants"
	model "task-kpi-system.com/task-kpi-system/internal/models"
)

type Claims struct {
	UserID string         `json:"user_id"`
	Role   constants.Role `json:"role"`
	Name   string         `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 identity tokens.
type Manager struct {
	secret []byte
}

func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	return &Manager{secret: []byte(secret)}, nil
}

func (m *Manager) GenerateToken(user model.User, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses tokenStr and returns the identity it carries.
func (m *Manager) Verify(tokenStr string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return model.Identity{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return model.Identity{}, jwt.ErrTokenInvalidClaims
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return model.Identity{}, fmt.Errorf("%w: user_id and role are required", jwt.ErrTokenInvalidClaims)
	}

	return model.Identity{UserID: claims.UserID, Role: claims.Role}, nil
}
