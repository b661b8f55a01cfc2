package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

type stubValidator struct {
	claims *models.JWTClaims
}

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return s.claims, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newIdentityRouter(mw gin.HandlerFunc, seen *string) *gin.Engine {
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		*seen = c.GetString(logger.ContextOwnerKey)
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTRequiresToken(t *testing.T) {
	validator := stubValidator{claims: &models.JWTClaims{OwnerID: "school-1", Role: models.RoleAdmin}}
	var owner string
	r := newIdentityRouter(JWT(validator), &owner)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)
	assert.Empty(t, owner)

	require.Equal(t, http.StatusNoContent, serve(r, "Bearer good").Code)
	assert.Equal(t, "school-1", owner)
}

func TestOptionalJWT(t *testing.T) {
	validator := stubValidator{claims: &models.JWTClaims{OwnerID: "school-2", Role: models.RoleViewer}}
	var owner string
	r := newIdentityRouter(OptionalJWT(validator), &owner)

	require.Equal(t, http.StatusNoContent, serve(r, "").Code)
	assert.Equal(t, models.AnonymousOwner, owner)

	owner = ""
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer bad").Code)
	assert.Empty(t, owner)

	require.Equal(t, http.StatusNoContent, serve(r, "bearer good").Code)
	assert.Equal(t, "school-2", owner)
}

func TestIdentitySelectsMode(t *testing.T) {
	validator := stubValidator{claims: &models.JWTClaims{OwnerID: "school-1"}}
	var owner string

	required := newIdentityRouter(Identity(validator, true), &owner)
	assert.Equal(t, http.StatusUnauthorized, serve(required, "").Code)

	optional := newIdentityRouter(Identity(validator, false), &owner)
	assert.Equal(t, http.StatusNoContent, serve(optional, "").Code)
}
