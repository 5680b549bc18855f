package handler

import (
	"net/http"
	"testing"

	"buildcrm/internal/model"
	"buildcrm/pkg/database"
	"buildcrm/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authServer(t *testing.T) *echo.Echo {
	t.Helper()
	e, _ := testServer(t)
	e.POST("/auth/register", Register)
	e.POST("/auth/login", Login)
	return e
}

func TestRegisterCreatesTenantAndAdmin(t *testing.T) {
	e := authServer(t)

	rec := call(e, http.MethodPost, "/auth/register", "",
		`{"email":"owner@example.com","password":"s3cret","name":"Jordan","company_name":"Acme Builders"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	user := data["user"].(map[string]any)
	tenant := data["tenant"].(map[string]any)
	assert.Equal(t, jwtutil.RoleClientAdmin, user["role"])
	assert.Equal(t, "acme-builders", tenant["slug"])
}

func TestRegisterValidation(t *testing.T) {
	e := authServer(t)

	rec := call(e, http.MethodPost, "/auth/register", "",
		`{"email":"owner@example.com","password":"s3cret"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(e, http.MethodPost, "/auth/register", "",
		`{"email":"not-an-email","password":"s3cret","company_name":"Acme Builders"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	e := authServer(t)
	body := `{"email":"owner@example.com","password":"s3cret","company_name":"Acme Builders"}`

	rec := call(e, http.MethodPost, "/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(e, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "CONFLICT", decodeErrorCode(t, rec))
}

func TestLoginIssuesTenantScopedToken(t *testing.T) {
	e := authServer(t)

	rec := call(e, http.MethodPost, "/auth/register", "",
		`{"email":"owner@example.com","password":"s3cret","company_name":"Acme Builders"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(e, http.MethodPost, "/auth/login", "",
		`{"email":"owner@example.com","password":"s3cret"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	token, ok := data["token"].(string)
	require.True(t, ok)

	claims, err := jwtutil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, jwtutil.RoleClientAdmin, claims.Role)
	require.NotNil(t, claims.TenantID)
	assert.Equal(t, "acme-builders", claims.TenantSlug)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	e := authServer(t)

	rec := call(e, http.MethodPost, "/auth/register", "",
		`{"email":"owner@example.com","password":"s3cret","company_name":"Acme Builders"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = call(e, http.MethodPost, "/auth/login", "",
		`{"email":"owner@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(e, http.MethodPost, "/auth/login", "",
		`{"email":"nobody@example.com","password":"s3cret"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginBlockedForPausedTenant(t *testing.T) {
	e := authServer(t)

	rec := call(e, http.MethodPost, "/auth/register", "",
		`{"email":"owner@example.com","password":"s3cret","company_name":"Acme Builders"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, database.GetDB().Model(&model.Tenant{}).
		Where("slug = ?", "acme-builders").
		Update("status", model.TenantStatusPaused).Error)

	rec = call(e, http.MethodPost, "/auth/login", "",
		`{"email":"owner@example.com","password":"s3cret"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", decodeErrorCode(t, rec))
}
