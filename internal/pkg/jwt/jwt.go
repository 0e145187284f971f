package jwt

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	GenerateAccessToken(claims user.Claims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) Service {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken issues an HS256 access token. Production tokens come
// from the identity service; only tests call this.
func (j *JWTService) GenerateAccessToken(claims user.Claims) (token string, expiresAt int64, err error) {
	if !claims.Role.IsValid() {
		return "", 0, fmt.Errorf("role %q: %w", claims.Role, user.ErrInvalidRole)
	}
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	payload := map[string]interface{}{
		"user_id":     claims.UserID,
		"employee_id": returnValueOrNil(claims.EmployeeID),
		"role":        string(claims.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(payload)
	return tokenString, expiresAt, err
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
