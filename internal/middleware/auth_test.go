package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAuthenticator_RoundTrip(t *testing.T) {
	a := NewAuthenticator(testSecret, "alelysee")
	user := uuid.New()

	token, err := a.Sign(user, time.Hour)
	require.NoError(t, err)

	got, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestAuthenticator_Rejects(t *testing.T) {
	a := NewAuthenticator(testSecret, "alelysee")
	user := uuid.New()

	sign := func(claims jwt.RegisteredClaims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   user.String(),
			Issuer:    "alelysee",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"
	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	noExpiry := valid()
	noExpiry.ExpiresAt = nil
	badSubject := valid()
	badSubject.Subject = "alice"

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", sign(valid(), jwt.SigningMethodHS256, []byte("other"))},
		{"wrong issuer", sign(wrongIssuer, jwt.SigningMethodHS256, []byte(testSecret))},
		{"expired", sign(expired, jwt.SigningMethodHS256, []byte(testSecret))},
		{"no expiry", sign(noExpiry, jwt.SigningMethodHS256, []byte(testSecret))},
		{"subject not a uuid", sign(badSubject, jwt.SigningMethodHS256, []byte(testSecret))},
		{"hs512", sign(valid(), jwt.SigningMethodHS512, []byte(testSecret))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	a := NewAuthenticator(testSecret, "alelysee")
	user := uuid.New()
	token, err := a.Sign(user, time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", a.RequireAuth(), func(c fiber.Ctx) error {
		id, ok := UserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(id.String())
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, fiber.StatusUnauthorized},
		{"empty bearer", "Bearer ", fiber.StatusUnauthorized},
		{"invalid", "Bearer nope", fiber.StatusUnauthorized},
		{"valid", "Bearer " + token, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
