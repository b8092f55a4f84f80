package unit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/middleware"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// =====================
// レスポンス確認用
// =====================

type mwErrorResponse struct {
	Error string `json:"error"`
}

type mwOKResponse struct {
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}

// =====================
// helper
// =====================

func mustMakeJWT(t *testing.T, secret string, sub interface{}, role string, verified bool, exp time.Time, method jwt.SigningMethod) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":      sub,
		"role":     role,
		"verified": verified,
		"iat":      time.Now().Unix(),
		"exp":      exp.Unix(),
	}

	tok := jwt.NewWithClaims(method, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// contextに積まれた値をそのまま返すprobe
func probeHandler(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserIDKey).(int64)
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	verified, _ := c.Get(middleware.CtxVerifiedSellerKey).(bool)
	return c.JSON(http.StatusOK, mwOKResponse{UserID: userID, Role: role, Verified: verified})
}

func doAuthRequest(t *testing.T, cfg config.Config, authz string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	h := probeHandler
	all := append([]echo.MiddlewareFunc{middleware.AuthJWT(cfg)}, mws...)
	for i := len(all) - 1; i >= 0; i-- {
		h = all[i](h)
	}
	e.GET("/probe", h)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// =====================
// AuthJWT
// =====================

func TestAuthJWT_MissingHeader(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	rec := doAuthRequest(t, cfg, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body mwErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unauthorized", body.Error)
}

func TestAuthJWT_MalformedHeader(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}

	rec := doAuthRequest(t, cfg, "Token abcdef")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_WrongSecret(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "other-secret", "1", "USER", false, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// HS256以外の署名方式は拒否する
func TestAuthJWT_WrongSigningMethod(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "1", "USER", false, time.Now().Add(time.Hour), jwt.SigningMethodHS384)

	rec := doAuthRequest(t, cfg, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ExpiredToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "1", "USER", false, time.Now().Add(-time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWT_ValidToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "42", "SELLER", true, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.UserID)
	assert.Equal(t, "SELLER", body.Role)
	assert.True(t, body.Verified)
}

// subが数値で入っていても受け付ける
func TestAuthJWT_NumericSub(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", 42, "USER", false, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body mwOKResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(42), body.UserID)
}

// =====================
// Role guards
// =====================

func TestAdminRoleGuard_RejectsNonAdmin(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "1", "USER", false, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token, middleware.AdminRoleGuard())

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleGuard_AllowsAdmin(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "9", "ADMIN", false, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token, middleware.AdminRoleGuard())

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifiedSellerGuard_RejectsUnverifiedSeller(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "2", "SELLER", false, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token, middleware.VerifiedSellerGuard())

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body mwErrorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "seller not verified", body.Error)
}

func TestVerifiedSellerGuard_AllowsVerifiedSeller(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "2", "SELLER", true, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token, middleware.VerifiedSellerGuard())

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifiedSellerGuard_AllowsAdmin(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "9", "ADMIN", false, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token, middleware.VerifiedSellerGuard())

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifiedSellerGuard_RejectsUser(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	token := mustMakeJWT(t, "test-secret", "1", "USER", false, time.Now().Add(time.Hour), jwt.SigningMethodHS256)

	rec := doAuthRequest(t, cfg, "Bearer "+token, middleware.VerifiedSellerGuard())

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
