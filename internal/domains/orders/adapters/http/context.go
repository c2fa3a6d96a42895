package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	headerTenantID = "x-tenant-id"
	headerUserID   = "x-user-id"
	headerRoles    = "x-roles"
	headerScopes   = "x-scopes"
)

var errMissingTenantHeader = errors.New("x-tenant-id header is required")

// RequestContext carries the caller identity resolved from request headers.
// Authentication happens upstream at the gateway; this layer only reads the
// identity headers the gateway injects.
type RequestContext struct {
	TenantID string
	UserID   string
	Roles    []string
	Scopes   []string
}

// FromRequest resolves the request context. The tenant id is mandatory since
// every order operation is tenant-scoped.
func FromRequest(c *gin.Context) (RequestContext, error) {
	tenantID := strings.TrimSpace(c.GetHeader(headerTenantID))
	if tenantID == "" {
		return RequestContext{}, errMissingTenantHeader
	}
	userID := strings.TrimSpace(c.GetHeader(headerUserID))
	if userID == "" {
		userID = "system"
	}
	return RequestContext{
		TenantID: tenantID,
		UserID:   userID,
		Roles:    splitCSV(c.GetHeader(headerRoles)),
		Scopes:   splitCSV(c.GetHeader(headerScopes)),
	}, nil
}

// HasScope reports whether the caller was granted the scope.
func (rc RequestContext) HasScope(scope string) bool {
	for _, granted := range rc.Scopes {
		if granted == scope {
			return true
		}
	}
	return false
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
