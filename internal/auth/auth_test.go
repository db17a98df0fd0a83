package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/supportbox/internal/triage"
	apperrors "github.com/spec-kit/supportbox/pkg/util"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	token, expiresAt, err := tm.GenerateToken("session-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
}

func TestTokenRejectsForeignSecretAndExpiry(t *testing.T) {
	issuer := NewTokenManager("secret", 5)
	token, _, err := issuer.GenerateToken("session-1")
	require.NoError(t, err)

	_, err = NewTokenManager("other", 5).ParseToken(token)
	assert.Error(t, err)

	late := NewTokenManager("secret", 5)
	late.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = late.ParseToken(token)
	assert.Error(t, err)
}

func TestSessionMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", 5)
	store := triage.NewStore()
	session := store.Create()
	token, _, err := tm.GenerateToken(session.ID())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Use(NewSessionMiddleware(tm, store).Handle)
	app.Get("/", func(c *fiber.Ctx) error {
		s, ok := SessionFromContext(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.SendString(s.ID())
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"malformed", "Token abc", fiber.StatusUnauthorized},
		{"garbage", "Bearer abc", fiber.StatusUnauthorized},
		{"valid", "Bearer " + token, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}

	store.Delete(session.ID())
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
