package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnector/internal/auth"
	"devconnector/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthRequired(t *testing.T) {
	secret := "test-secret-key-12345678901234567890123456789012"
	issuedAt := time.Now()
	tokens, err := auth.NewTokenManager(secret, auth.WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)

	verifier, err := auth.NewTokenManager(secret)
	require.NoError(t, err)

	handlerCalls := 0
	app := fiber.New()
	app.Get("/test", AuthRequired(verifier), func(c *fiber.Ctx) error {
		handlerCalls++
		userID, _ := UserIDFrom(c)
		claims, ok := ClaimsFrom(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		ctxUser, _ := c.UserContext().Value(UserIDKey).(string)
		return c.JSON(fiber.Map{"userID": userID, "email": claims.Email, "ctxUser": ctxUser})
	})

	valid, err := tokens.Issue(auth.Identity{ID: "user-123", Name: "Ada", Email: "ada@example.com"}, time.Hour)
	require.NoError(t, err)

	expiredIssuer, err := auth.NewTokenManager(secret, auth.WithClock(func() time.Time { return issuedAt.Add(-2 * time.Hour) }))
	require.NoError(t, err)
	expired, err := expiredIssuer.Issue(auth.Identity{ID: "user-123"}, time.Hour)
	require.NoError(t, err)

	forger, err := auth.NewTokenManager("another-secret-key-1234567890123456789012")
	require.NoError(t, err)
	forged, err := forger.Issue(auth.Identity{ID: "user-123"}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedCode   string
	}{
		{"Happy Path", "Bearer " + valid, http.StatusOK, ""},
		{"Lowercase scheme", "bearer " + valid, http.StatusOK, ""},
		{"Missing Header", "", http.StatusUnauthorized, models.CodeUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, models.CodeUnauthorized},
		{"Bearer without token", "Bearer ", http.StatusUnauthorized, models.CodeUnauthorized},
		{"Raw token without scheme", valid, http.StatusUnauthorized, models.CodeUnauthorized},
		{"Expired Token", "Bearer " + expired, http.StatusUnauthorized, models.CodeTokenExpired},
		{"Forged Token", "Bearer " + forged, http.StatusUnauthorized, models.CodeInvalidToken},
		{"Malformed Token", "Bearer not.a.jwt", http.StatusUnauthorized, models.CodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := handlerCalls
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(raw, &body))
				assert.Equal(t, "user-123", body["userID"])
				assert.Equal(t, "user-123", body["ctxUser"])
				assert.Equal(t, "ada@example.com", body["email"])
				assert.Equal(t, before+1, handlerCalls)
				return
			}

			var body models.ErrorResponse
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, tt.expectedCode, body.Code)
			assert.Equal(t, before, handlerCalls, "handler must not run")
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()

	tok, ok := bearerToken("  Bearer   abc.def.ghi ")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", tok)

	_, ok = bearerToken("Token abc")
	assert.False(t, ok)
}
