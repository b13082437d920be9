package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wms/backend/internal/infrastructure/logger"
	"github.com/wms/backend/internal/interfaces/http/dto"
)

// JWTConfig configures bearer token parsing
type JWTConfig struct {
	// Secret is the HMAC key; an empty secret disables the middleware
	Secret string
	// Issuer is checked when set
	Issuer string
	// Required rejects requests without a token
	Required bool
}

// JWT identifies the acting user from an HS256 bearer token.
// The token subject becomes the user id carried into event metadata.
func JWT(cfg JWTConfig) gin.HandlerFunc {
	if cfg.Secret == "" {
		return func(c *gin.Context) { c.Next() }
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	parser := jwt.NewParser(opts...)
	keyFunc := func(*jwt.Token) (any, error) { return []byte(cfg.Secret), nil }

	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			if cfg.Required || !errors.Is(err, errNoToken) {
				unauthorized(c, err.Error())
				return
			}
			c.Next()
			return
		}

		var claims jwt.RegisteredClaims
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			unauthorized(c, "Invalid token")
			return
		}
		if claims.Subject == "" {
			unauthorized(c, "Token has no subject")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.Subject))
		c.Next()
	}
}

var errNoToken = errors.New("authorization header is missing")

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errNoToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errors.New("authorization header must be a bearer token")
	}
	return token, nil
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrorInfo{
		Code:      dto.ErrCodeUnauthorized,
		Message:   message,
		RequestID: GetRequestID(c),
	}))
}

// GetUserID returns the user identified by JWT, if any
func GetUserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
