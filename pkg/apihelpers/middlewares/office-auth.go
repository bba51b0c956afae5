package middlewares

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	jwthandling "github.com/arcflow/arcflow-backend/pkg/jwt-handling"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderAPIKey        = "X-API-Key"
	HeaderOfficeID      = "X-Office-ID"

	CTX_VALIDATED_TOKEN = "validatedToken"
)

// OfficeAuthMiddleware accepts either an office user JWT or, for service
// users, an API key together with the office id header.
func OfficeAuthMiddleware(tokenSignKey string, allowedOfficeIDs []string, serviceAPIKeys []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isServiceUser(c) {
			validateServiceUser(c, allowedOfficeIDs, serviceAPIKeys)
		} else {
			validateOfficeUser(c, tokenSignKey, allowedOfficeIDs)
		}
	}
}

func isServiceUser(c *gin.Context) bool {
	return c.GetHeader(HeaderAPIKey) != "" && c.GetHeader(HeaderOfficeID) != ""
}

func validateServiceUser(c *gin.Context, allowedOfficeIDs []string, serviceAPIKeys []string) {
	slog.Debug("auth as service user")
	apiKey := c.GetHeader(HeaderAPIKey)
	officeID := c.GetHeader(HeaderOfficeID)

	if !isOfficeAllowed(officeID, allowedOfficeIDs) {
		slog.Warn("officeID not allowed", slog.String("officeID", officeID), slog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "officeID not allowed"})
		return
	}

	if !isKeyValid(apiKey, serviceAPIKeys) {
		slog.Warn("Attempted to use invalid api key", slog.String("officeID", officeID), slog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
		return
	}

	c.Set(CTX_VALIDATED_TOKEN, &jwthandling.OfficeUserClaims{
		OfficeID:      officeID,
		IsServiceUser: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "service",
		},
	})
	c.Next()
}

func validateOfficeUser(c *gin.Context, tokenSignKey string, allowedOfficeIDs []string) {
	slog.Debug("auth as office user")
	token, err := extractToken(c)
	if err != nil {
		slog.Warn("no Authorization token found")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsedToken, ok, err := jwthandling.ValidateOfficeUserToken(token, tokenSignKey)
	if err != nil || !ok {
		slog.Warn("token validation failed")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "error during token validation"})
		return
	}

	if !isOfficeAllowed(parsedToken.OfficeID, allowedOfficeIDs) {
		slog.Warn("officeID not allowed", slog.String("officeID", parsedToken.OfficeID), slog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "officeID not allowed"})
		return
	}
	c.Set(CTX_VALIDATED_TOKEN, parsedToken)
	c.Next()
}

func extractToken(c *gin.Context) (string, error) {
	header := c.GetHeader(HeaderAuthorization)
	if header == "" {
		return "", errors.New("No Authorization header found")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if len(token) == 0 {
		return token, errors.New("No token found in Authorization header")
	}
	return token, nil
}

func isOfficeAllowed(officeID string, allowedOfficeIDs []string) bool {
	for _, id := range allowedOfficeIDs {
		if id == officeID {
			return true
		}
	}
	return false
}

func isKeyValid(key string, validKeys []string) bool {
	for _, vk := range validKeys {
		if vk != "" && subtle.ConstantTimeCompare([]byte(key), []byte(vk)) == 1 {
			return true
		}
	}
	return false
}

// GetOfficeClaims returns the claims stored by OfficeAuthMiddleware.
func GetOfficeClaims(c *gin.Context) (*jwthandling.OfficeUserClaims, bool) {
	v, ok := c.Get(CTX_VALIDATED_TOKEN)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwthandling.OfficeUserClaims)
	return claims, ok
}

// CanPublishSchemas lets office admins and service users through.
func CanPublishSchemas() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetOfficeClaims(c)
		if !ok {
			slog.Warn("CanPublishSchemas: validatedToken not found in context")
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validatedToken not found in context"})
			return
		}
		if !claims.IsServiceUser && !claims.IsAdmin() {
			slog.Warn("user without permission tried to publish a schema", slog.String("officeID", claims.OfficeID), slog.String("userID", claims.Subject))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not allowed to publish schemas"})
			return
		}
		c.Next()
	}
}

func IsOfficeAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetOfficeClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validatedToken not found in context"})
			return
		}
		if claims.IsServiceUser || !claims.IsAdmin() {
			slog.Warn("non-admin user tried to access an admin endpoint", slog.String("officeID", claims.OfficeID), slog.String("userID", claims.Subject), slog.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "office admin role required"})
			return
		}
		c.Next()
	}
}
