package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helperAuth "schoolku_backend/internals/helpers/auth"
)

const testSecret = "rahasia-test"

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func newApp(opts AuthJWTOpts, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).SendString(fe.Message)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	handlers := append([]fiber.Handler{AuthJWT(opts)}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		scope, err := helperAuth.GetTenantScope(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"org": scope.OrgID, "branch": scope.BranchID, "admin": helperAuth.HasRole(c, "admin")})
	})
	app.Get("/x", handlers...)
	return app
}

func call(t *testing.T, app *fiber.App, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestAuthJWT(t *testing.T) {
	org := uuid.NewString()
	good := jwt.MapClaims{
		"sub": uuid.NewString(), "org_id": org, "branch_id": uuid.NewString(),
		"roles": []string{"Admin"}, "exp": time.Now().Add(time.Hour).Unix(),
	}
	app := newApp(AuthJWTOpts{Secret: testSecret}, RequireRoles("admin", "finance"))

	assert.Equal(t, fiber.StatusOK, call(t, app, sign(t, good, testSecret)))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, ""))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, sign(t, good, "secret-lain")))

	expired := jwt.MapClaims{"sub": uuid.NewString(), "org_id": org, "exp": time.Now().Add(-time.Minute).Unix()}
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, sign(t, expired, testSecret)))

	student := jwt.MapClaims{"sub": uuid.NewString(), "org_id": org, "roles": []string{"student"}}
	assert.Equal(t, fiber.StatusForbidden, call(t, app, sign(t, student, testSecret)))
}

func TestAuthJWT_TenantAndBlacklist(t *testing.T) {
	noOrg := sign(t, jwt.MapClaims{"sub": uuid.NewString(), "roles": []string{"admin"}}, testSecret)
	app := newApp(AuthJWTOpts{Secret: testSecret}, RequireTenant())
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, noOrg))

	revoked := sign(t, jwt.MapClaims{"sub": uuid.NewString(), "org_id": uuid.NewString()}, testSecret)
	app = newApp(AuthJWTOpts{
		Secret: testSecret,
		BlacklistChecker: func(_ context.Context, raw string) (bool, error) {
			return raw == revoked, nil
		},
	})
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, revoked))
}

func TestReadStringSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, readStringSlice([]any{" a ", "", "b", 3}))
	assert.Equal(t, []string{"x"}, readStringSlice("x"))
	assert.Empty(t, readStringSlice(nil))
}
