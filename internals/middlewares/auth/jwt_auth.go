package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/redis/go-redis/v9"

	helperAuth "schoolku_backend/internals/helpers/auth"
)

type AuthJWTOpts struct {
	Secret              string
	BlacklistChecker    func(ctx context.Context, rawToken string) (bool, error) // true = token dicabut
	AllowCookieFallback bool                                                     // cookie access_token kalau tidak ada Bearer
}

// AuthJWT verifikasi HS* token lalu isi Locals yang dibaca helperAuth:
// org_id, branch_id, user_id, roles, student_id.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}

	return func(c *fiber.Ctx) error {
		raw := bearerToken(c, o.AllowCookieFallback)
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		if o.BlacklistChecker != nil {
			if black, err := o.BlacklistChecker(c.UserContext(), raw); err == nil && black {
				return fiber.NewError(fiber.StatusUnauthorized, "Token revoked")
			}
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
		}

		// user_id: id > sub > user_id
		for _, key := range []string{"id", "sub", "user_id"} {
			if v := strClaim(claims, key); v != "" {
				c.Locals(helperAuth.LocUserID, v)
				break
			}
		}
		if v := strClaim(claims, "org_id"); v != "" {
			c.Locals(helperAuth.LocOrgID, v)
		}
		if v := strClaim(claims, "branch_id"); v != "" {
			c.Locals(helperAuth.LocBranchID, v)
		}
		if v := strClaim(claims, "student_id"); v != "" {
			c.Locals(helperAuth.LocStudent, v)
		}
		c.Locals(helperAuth.LocRoles, readStringSlice(claims["roles"]))

		return c.Next()
	}
}

// RequireRoles: minimal satu role cocok.
func RequireRoles(roles ...string) fiber.Handler {
	return RequireRolesMsg("Forbidden: role tidak diizinkan", roles...)
}

func RequireRolesMsg(message string, roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, r := range roles {
			if helperAuth.HasRole(c, r) {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, message)
	}
}

// RequireTenant: token wajib membawa org_id.
func RequireTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := helperAuth.GetTenantScope(c); err != nil {
			return err
		}
		return c.Next()
	}
}

// RedisBlacklist: token dicabut disimpan sebagai key "jwt:blacklist:<token>".
func RedisBlacklist(rdb *redis.Client) func(ctx context.Context, rawToken string) (bool, error) {
	return func(ctx context.Context, rawToken string) (bool, error) {
		n, err := rdb.Exists(ctx, "jwt:blacklist:"+rawToken).Result()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func bearerToken(c *fiber.Ctx, cookieFallback bool) string {
	authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	if cookieFallback {
		return strings.TrimSpace(c.Cookies("access_token"))
	}
	return ""
}

func strClaim(m jwt.MapClaims, key string) string {
	if s, ok := m[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// []string atau []any → []string
func readStringSlice(v any) []string {
	out := make([]string, 0)
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}
