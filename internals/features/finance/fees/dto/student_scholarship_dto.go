// File: internals/features/finance/fees/dto/student_scholarship_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/service"
)

// approved_by diisi controller dari user_id token.
type StudentScholarshipCreateDTO struct {
	StudentID     uuid.UUID `json:"student_id" validate:"required"`
	ScholarshipID uuid.UUID `json:"scholarship_id" validate:"required"`
	SessionID     uuid.UUID `json:"session_id" validate:"required"`
	Remarks       *string   `json:"remarks,omitempty"`
}

type StudentScholarshipResponse struct {
	StudentScholarshipID             uuid.UUID  `json:"student_scholarship_id"`
	StudentScholarshipStudentID      uuid.UUID  `json:"student_scholarship_student_id"`
	StudentScholarshipScholarshipID  uuid.UUID  `json:"student_scholarship_scholarship_id"`
	StudentScholarshipSessionID      uuid.UUID  `json:"student_scholarship_session_id"`
	StudentScholarshipDiscountAmount int64      `json:"student_scholarship_discount_amount"`
	StudentScholarshipDiscountText   string     `json:"student_scholarship_discount_text"`
	StudentScholarshipApprovedByID   *uuid.UUID `json:"student_scholarship_approved_by_id,omitempty"`
	StudentScholarshipRemarks        *string    `json:"student_scholarship_remarks,omitempty"`
	StudentScholarshipIsActive       bool       `json:"student_scholarship_is_active"`
	StudentScholarshipRemovedAt      *time.Time `json:"student_scholarship_removed_at,omitempty"`
	StudentScholarshipCreatedAt      time.Time  `json:"student_scholarship_created_at"`

	// ringkasan definisi beasiswa (kalau ter-preload)
	ScholarshipName *string            `json:"scholarship_name,omitempty"`
	ScholarshipType *calc.DiscountKind `json:"scholarship_type,omitempty"`
}

func (d StudentScholarshipCreateDTO) ToInput(approvedBy *uuid.UUID) service.AssignInput {
	return service.AssignInput{
		StudentID:     d.StudentID,
		ScholarshipID: d.ScholarshipID,
		SessionID:     d.SessionID,
		ApprovedByID:  approvedBy,
		Remarks:       trimOrNil(d.Remarks),
	}
}

func ToStudentScholarshipResponse(m model.StudentScholarship) StudentScholarshipResponse {
	out := StudentScholarshipResponse{
		StudentScholarshipID:             m.StudentScholarshipID,
		StudentScholarshipStudentID:      m.StudentScholarshipStudentID,
		StudentScholarshipScholarshipID:  m.StudentScholarshipScholarshipID,
		StudentScholarshipSessionID:      m.StudentScholarshipSessionID,
		StudentScholarshipDiscountAmount: m.StudentScholarshipDiscountAmount,
		StudentScholarshipDiscountText:   calc.Format(m.StudentScholarshipDiscountAmount),
		StudentScholarshipApprovedByID:   m.StudentScholarshipApprovedByID,
		StudentScholarshipRemarks:        m.StudentScholarshipRemarks,
		StudentScholarshipIsActive:       m.StudentScholarshipIsActive,
		StudentScholarshipRemovedAt:      m.StudentScholarshipRemovedAt,
		StudentScholarshipCreatedAt:      m.StudentScholarshipCreatedAt,
	}
	if m.Scholarship != nil {
		name, kind := m.Scholarship.ScholarshipName, m.Scholarship.ScholarshipType
		out.ScholarshipName = &name
		out.ScholarshipType = &kind
	}
	return out
}

func ToStudentScholarshipResponses(list []model.StudentScholarship) []StudentScholarshipResponse {
	out := make([]StudentScholarshipResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToStudentScholarshipResponse(m))
	}
	return out
}
