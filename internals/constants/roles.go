package constants

import "fmt"

// Role yang dibaca dari klaim "roles" token
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleFinance  = "finance"
	RoleStudent  = "student"
	RoleGuardian = "guardian"
)

// FeeStaffRoles: boleh mengelola komponen, beasiswa, template, struktur.
var FeeStaffRoles = []string{RoleOwner, RoleAdmin, RoleFinance}

// FeeSelfRoles: boleh melihat struktur milik sendiri.
var FeeSelfRoles = []string{RoleStudent, RoleGuardian}

const ErrOnlyStaffCanAccess = "Hanya admin atau bagian keuangan yang boleh mengakses fitur %s."

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}
