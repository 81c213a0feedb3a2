// file: internals/features/finance/fees/model/student_scholarship_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- MODEL student_scholarships ------------------------------------------------------
// Assignment scholarship ke siswa per session.
// discount_amount = cache hasil recalculation; hanya orchestrator yang menulis nilainya.
// Unik per (student, scholarship, session) selama aktif (partial unique index).
type StudentScholarship struct {
	StudentScholarshipID uuid.UUID `json:"student_scholarship_id" gorm:"column:student_scholarship_id;type:uuid;primaryKey"`

	// Tenant
	StudentScholarshipOrgID    uuid.UUID `json:"student_scholarship_org_id" gorm:"column:student_scholarship_org_id;type:uuid;not null;index"`
	StudentScholarshipBranchID uuid.UUID `json:"student_scholarship_branch_id" gorm:"column:student_scholarship_branch_id;type:uuid;not null"`

	StudentScholarshipStudentID     uuid.UUID `json:"student_scholarship_student_id" gorm:"column:student_scholarship_student_id;type:uuid;not null;uniqueIndex:uq_student_scholarship_active,priority:1,where:student_scholarship_is_active;index:ix_student_scholarship_student_session,priority:1"`
	StudentScholarshipScholarshipID uuid.UUID `json:"student_scholarship_scholarship_id" gorm:"column:student_scholarship_scholarship_id;type:uuid;not null;uniqueIndex:uq_student_scholarship_active,priority:2,where:student_scholarship_is_active;index"`
	StudentScholarshipSessionID     uuid.UUID `json:"student_scholarship_session_id" gorm:"column:student_scholarship_session_id;type:uuid;not null;uniqueIndex:uq_student_scholarship_active,priority:3,where:student_scholarship_is_active;index:ix_student_scholarship_student_session,priority:2"`

	StudentScholarshipDiscountAmount int64 `json:"student_scholarship_discount_amount" gorm:"column:student_scholarship_discount_amount;type:bigint;not null"`

	StudentScholarshipApprovedByID *uuid.UUID `json:"student_scholarship_approved_by_id,omitempty" gorm:"column:student_scholarship_approved_by_id;type:uuid"`
	StudentScholarshipRemarks      *string    `json:"student_scholarship_remarks,omitempty" gorm:"column:student_scholarship_remarks;type:text"`

	StudentScholarshipIsActive  bool       `json:"student_scholarship_is_active" gorm:"column:student_scholarship_is_active;not null"`
	StudentScholarshipRemovedAt *time.Time `json:"student_scholarship_removed_at,omitempty" gorm:"column:student_scholarship_removed_at"`

	StudentScholarshipCreatedAt time.Time `json:"student_scholarship_created_at" gorm:"column:student_scholarship_created_at;not null;autoCreateTime"`
	StudentScholarshipUpdatedAt time.Time `json:"student_scholarship_updated_at" gorm:"column:student_scholarship_updated_at;not null;autoUpdateTime"`

	// Untuk listing; tidak ditulis lewat assignment
	Scholarship *Scholarship `json:"scholarship,omitempty" gorm:"foreignKey:StudentScholarshipScholarshipID;references:ScholarshipID"`
}

func (StudentScholarship) TableName() string { return "student_scholarships" }

func (m *StudentScholarship) BeforeCreate(tx *gorm.DB) error {
	if m.StudentScholarshipID == uuid.Nil {
		m.StudentScholarshipID = uuid.New()
	}
	return nil
}
