package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/equivalence-api/internal/models"
	appErrors "github.com/noah-isme/equivalence-api/pkg/errors"
	"github.com/noah-isme/equivalence-api/pkg/response"
)

// ContextAuthKey is the gin context key storing the request's AuthContext.
const ContextAuthKey = "authContext"

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Authenticate resolves the caller once per request. Missing or invalid
// tokens produce an anonymous AuthContext and never block the request.
func Authenticate(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, _ := resolve(c, validator)
		c.Set(ContextAuthKey, auth)
		c.Next()
	}
}

// RequireAuth resolves the caller and rejects anonymous requests with 401.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, err := resolve(c, validator)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(ContextAuthKey, auth)
		c.Next()
	}
}

// AuthContextFrom returns the AuthContext stored by Authenticate or
// RequireAuth, or an anonymous one.
func AuthContextFrom(c *gin.Context) models.AuthContext {
	value, exists := c.Get(ContextAuthKey)
	if !exists {
		return models.AuthContext{}
	}
	auth, ok := value.(models.AuthContext)
	if !ok {
		return models.AuthContext{}
	}
	return auth
}

func resolve(c *gin.Context, validator TokenValidator) (models.AuthContext, error) {
	if existing := AuthContextFrom(c); existing.Authenticated() {
		return existing, nil
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return models.AuthContext{}, appErrors.Clone(appErrors.ErrUnauthorized, "token not provided")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return models.AuthContext{}, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}

	claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return models.AuthContext{}, err
	}
	return models.AuthContext{UserID: claims.UserID, Email: claims.Email}, nil
}
