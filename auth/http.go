package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	ErrNoToken         = errors.New("missing_bearer_token")
	ErrMalformedHeader = errors.New("malformed_authorization_header")
)

// BearerToken pulls the credential out of the request's Authorization
// header, accepting any casing of the Bearer scheme.
func BearerToken(c *gin.Context) (string, error) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return "", ErrNoToken
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedHeader
	}

	return strings.TrimSpace(token), nil
}

// Unauthorized aborts the request with a 401 and the failure reason.
func Unauthorized(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
}
