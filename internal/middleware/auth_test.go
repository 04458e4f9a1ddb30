package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgettracker/internal/config"
	"budgettracker/internal/models"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func useTestConfig(t *testing.T, accessTTL time.Duration) {
	t.Helper()
	config.Set(&config.Config{
		JWTSecret:     testSecret,
		JWTAccessTTL:  accessTTL,
		JWTRefreshTTL: time.Hour,
	})
}

func setupProtectedRouter() *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.MustGet(UserIDKey)})
	})
	return r
}

func doAuthRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func TestAuthMiddleware(t *testing.T) {
	useTestConfig(t, time.Minute)
	user := &models.User{Base: models.Base{ID: 42}, Username: "alice"}

	access, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	refresh, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &JWTClaims{
		UserID:    42,
		TokenType: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid_access_token", header: "Bearer " + access, wantStatus: http.StatusOK},
		{name: "lowercase_scheme", header: "bearer " + access, wantStatus: http.StatusOK},
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong_scheme", header: "Basic " + access, wantStatus: http.StatusUnauthorized},
		{name: "no_token", header: "Bearer", wantStatus: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", wantStatus: http.StatusUnauthorized},
		{name: "refresh_token_as_access", header: "Bearer " + refresh, wantStatus: http.StatusUnauthorized},
		{name: "wrong_signing_key", header: "Bearer " + forged, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doAuthRequest(setupProtectedRouter(), tt.header)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			body := parseBody(t, rec)
			if tt.wantStatus == http.StatusOK {
				if body["user_id"].(float64) != 42 {
					t.Errorf("expected user_id 42, got %v", body["user_id"])
				}
				return
			}
			errObj, ok := body["error"].(map[string]interface{})
			if !ok || errObj["code"] != "UNAUTHORIZED" {
				t.Errorf("expected UNAUTHORIZED error, got %v", body)
			}
		})
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	useTestConfig(t, -time.Minute)
	expired, err := GenerateAccessToken(&models.User{Base: models.Base{ID: 1}})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	useTestConfig(t, time.Minute)

	rec := doAuthRequest(setupProtectedRouter(), "Bearer "+expired)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRefreshTokens(t *testing.T) {
	useTestConfig(t, time.Minute)
	user := &models.User{Base: models.Base{ID: 5}, Username: "bob"}

	first, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	second, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if first == second || HashToken(first) == HashToken(second) {
		t.Error("expected each refresh token to be unique")
	}

	claims, err := ValidateRefreshToken(first)
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if claims.UserID != 5 || claims.Username != "bob" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	access, _ := GenerateAccessToken(user)
	if _, err := ValidateRefreshToken(access); err == nil {
		t.Error("expected access token to be rejected as refresh token")
	}

	if len(HashToken(first)) != 64 {
		t.Errorf("expected 64-char hex digest, got %d chars", len(HashToken(first)))
	}
}
