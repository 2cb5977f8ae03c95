package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-labyrinth/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextUserClaims is the key used to store user claims in the Gin context.
	ContextUserClaims = "userClaims"

	// tokenQueryParam carries the token for websocket upgrades, where
	// browsers cannot set the Authorization header.
	tokenQueryParam = "token"
)

// Authoriz validates the bearer token and stores its claims in the context.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Status(http.StatusUnauthorized)
			c.Abort()
			return
		}

		// Validate the token using the barrier service.
		claims, err := ts.Decode(token)
		if err != nil {
			c.Status(http.StatusUnauthorized)
			c.Abort()
			return
		}

		// Attach user claims to the request context for further use.
		c.Set(ContextUserClaims, claims)
		c.Next()
	}
}

// bearerToken reads the token from the Authorization header, falling back
// to the token query parameter.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		token := c.Query(tokenQueryParam)
		return token, token != ""
	}

	// Split the "Bearer" prefix from the token.
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// PlayerID returns the authenticated player's ID from the context claims.
func PlayerID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ContextUserClaims)
	if !ok {
		return uuid.Nil, false
	}
	claims, ok := raw.(map[string]interface{})
	if !ok {
		return uuid.Nil, false
	}
	idString, ok := claims["userID"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idString)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
