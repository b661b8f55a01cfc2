package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func newRBACRouter(role models.UserRole, roles ...models.UserRole) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Set(ContextUserKey, &models.JWTClaims{OwnerID: "school-1", Role: role})
		}
		c.Next()
	})
	r.GET("/", RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name  string
		role  models.UserRole
		roles []models.UserRole
		want  int
	}{
		{name: "anonymous passes", roles: Writers, want: http.StatusNoContent},
		{name: "admin writes", role: models.RoleAdmin, roles: Writers, want: http.StatusNoContent},
		{name: "viewer cannot write", role: models.RoleViewer, roles: Writers, want: http.StatusForbidden},
		{name: "coordinator schedules", role: models.RoleCoordinator, roles: Schedulers, want: http.StatusNoContent},
		{name: "viewer cannot schedule", role: models.RoleViewer, roles: Schedulers, want: http.StatusForbidden},
		{name: "viewer reads", role: models.RoleViewer, roles: Readers, want: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newRBACRouter(tc.role, tc.roles...), "")
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRBACRejectsForeignClaims(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) {
		c.Set(ContextUserKey, "not-claims")
		c.Next()
	}, RBAC(string(models.RoleAdmin)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
}
