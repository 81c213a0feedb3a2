// file: internals/helpers/auth/tenant_scope.go
package helper

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Locals key yang diisi AuthJWT
const (
	LocOrgID    = "org_id"
	LocBranchID = "branch_id"
	LocUserID   = "user_id"
	LocRoles    = "roles"
	LocStudent  = "student_id"
)

// TenantScope = identitas tenant hasil resolusi auth.
// BranchID == uuid.Nil → admin level organisasi (tanpa predikat branch).
type TenantScope struct {
	OrgID    uuid.UUID
	BranchID uuid.UUID
}

func (s TenantScope) Valid() bool { return s.OrgID != uuid.Nil }

func (s TenantScope) HasBranch() bool { return s.BranchID != uuid.Nil }

var (
	ErrTenantMissing = fiber.NewError(fiber.StatusUnauthorized, "tenant scope tidak ditemukan di token")
	ErrUserMissing   = fiber.NewError(fiber.StatusUnauthorized, "user_id tidak ditemukan di token")
)

// GetTenantScope membaca scope dari Locals (diisi middleware AuthJWT).
func GetTenantScope(c *fiber.Ctx) (TenantScope, error) {
	org, ok := localsUUID(c, LocOrgID)
	if !ok || org == uuid.Nil {
		return TenantScope{}, ErrTenantMissing
	}
	branch, _ := localsUUID(c, LocBranchID)
	return TenantScope{OrgID: org, BranchID: branch}, nil
}

func GetUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := localsUUID(c, LocUserID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrUserMissing
	}
	return id, nil
}

// GetStudentID: student_id milik user yang login (untuk endpoint /api/u).
func GetStudentID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := localsUUID(c, LocStudent)
	if !ok || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusForbidden, "akun ini tidak terhubung dengan siswa")
	}
	return id, nil
}

// HasRole cek role (case-insensitive) di Locals roles.
func HasRole(c *fiber.Ctx, role string) bool {
	want := strings.ToLower(strings.TrimSpace(role))
	switch t := c.Locals(LocRoles).(type) {
	case []string:
		for _, r := range t {
			if strings.ToLower(strings.TrimSpace(r)) == want {
				return true
			}
		}
	case []any:
		for _, it := range t {
			if s, ok := it.(string); ok && strings.ToLower(strings.TrimSpace(s)) == want {
				return true
			}
		}
	case string:
		return strings.ToLower(strings.TrimSpace(t)) == want
	}
	return false
}

func localsUUID(c *fiber.Ctx, key string) (uuid.UUID, bool) {
	switch t := c.Locals(key).(type) {
	case uuid.UUID:
		return t, true
	case string:
		id, err := uuid.Parse(strings.TrimSpace(t))
		if err != nil {
			return uuid.Nil, false
		}
		return id, true
	default:
		return uuid.Nil, false
	}
}
