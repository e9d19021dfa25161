package jwt

import (
	"context"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/onestaff/onestaff-os/internal/domain/auth"
	"github.com/onestaff/onestaff-os/internal/domain/user"
)

const sseTokenTTL = 5 * time.Minute

// Service verifies access tokens minted by the identity service and issues
// short-lived SSE tokens. GenerateAccessToken uses the shared secret and is
// meant for local tooling and tests.
type Service interface {
	GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) Service {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(principal user.Principal) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id": principal.UserID,
		"role":    string(principal.Role),
		"type":    "access",
		"exp":     expiresAt,
	}
	if principal.EmployeeID != nil {
		claims["employee_id"] = *principal.EmployeeID
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken issues a token that can be passed in a query string,
// since EventSource cannot send headers
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    "sse",
		"exp":     time.Now().Add(sseTokenTTL).Unix(),
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, int(sseTokenTTL.Seconds()), nil
}

func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", auth.ErrInvalidToken
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	if tokenType, _ := claims["type"].(string); tokenType != "sse" {
		return "", auth.ErrInvalidToken
	}

	userID, _ = claims["user_id"].(string)
	if userID == "" {
		return "", auth.ErrMissingClaims
	}
	return userID, nil
}

// PrincipalFromClaims reads the caller out of verified access-token claims.
func PrincipalFromClaims(claims map[string]interface{}) (user.Principal, error) {
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return user.Principal{}, auth.ErrMissingClaims
	}

	p := user.Principal{UserID: userID, Role: user.Role(role)}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		p.EmployeeID = &employeeID
	}
	return p, nil
}
