// file: internals/features/finance/fees/model/directory_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// Read model milik modul CRUD siswa/akademik. Engine fee hanya membaca
// identitas & scope tenant-nya; tidak pernah menulis tabel ini.

type Student struct {
	StudentID       uuid.UUID `json:"student_id" gorm:"column:student_id;type:uuid;primaryKey"`
	StudentOrgID    uuid.UUID `json:"student_org_id" gorm:"column:student_org_id;type:uuid;not null;index"`
	StudentBranchID uuid.UUID `json:"student_branch_id" gorm:"column:student_branch_id;type:uuid;not null;index"`
	StudentName     string    `json:"student_name" gorm:"column:student_name;type:varchar(160);not null"`
	StudentIsActive bool      `json:"student_is_active" gorm:"column:student_is_active;not null"`
}

func (Student) TableName() string { return "students" }

type AcademicSession struct {
	AcademicSessionID       uuid.UUID  `json:"academic_session_id" gorm:"column:academic_session_id;type:uuid;primaryKey"`
	AcademicSessionOrgID    uuid.UUID  `json:"academic_session_org_id" gorm:"column:academic_session_org_id;type:uuid;not null;index"`
	AcademicSessionName     string     `json:"academic_session_name" gorm:"column:academic_session_name;type:varchar(60);not null"`
	AcademicSessionStartsOn *time.Time `json:"academic_session_starts_on,omitempty" gorm:"column:academic_session_starts_on;type:date"`
	AcademicSessionEndsOn   *time.Time `json:"academic_session_ends_on,omitempty" gorm:"column:academic_session_ends_on;type:date"`
}

func (AcademicSession) TableName() string { return "academic_sessions" }
