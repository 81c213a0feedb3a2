// File: internals/features/finance/fees/dto/scholarship_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/service"
)

// scholarship_value: persen (0,100] untuk percentage, minor unit untuk fixed_amount,
// diabaikan untuk component_waiver.
type ScholarshipCreateDTO struct {
	ScholarshipName        string          `json:"scholarship_name" validate:"required,max=120"`
	ScholarshipType        string          `json:"scholarship_type" validate:"required,oneof=percentage fixed_amount component_waiver"`
	ScholarshipBasis       string          `json:"scholarship_basis,omitempty"`
	ScholarshipValue       decimal.Decimal `json:"scholarship_value"`
	ScholarshipComponentID *uuid.UUID      `json:"scholarship_component_id,omitempty"`
	ScholarshipMaxAmount   *int64          `json:"scholarship_max_amount,omitempty" validate:"omitempty,lte=1000000000000000"`
	ScholarshipDescription *string         `json:"scholarship_description,omitempty"`
}

// Update (partial). clear_* dipakai untuk mengosongkan field nullable.
type ScholarshipUpdateDTO struct {
	ScholarshipName        *string          `json:"scholarship_name,omitempty" validate:"omitempty,max=120"`
	ScholarshipType        *string          `json:"scholarship_type,omitempty" validate:"omitempty,oneof=percentage fixed_amount component_waiver"`
	ScholarshipBasis       *string          `json:"scholarship_basis,omitempty"`
	ScholarshipValue       *decimal.Decimal `json:"scholarship_value,omitempty"`
	ScholarshipComponentID *uuid.UUID       `json:"scholarship_component_id,omitempty"`
	ScholarshipMaxAmount   *int64           `json:"scholarship_max_amount,omitempty" validate:"omitempty,lte=1000000000000000"`
	ScholarshipDescription *string          `json:"scholarship_description,omitempty"`

	ClearComponentID bool `json:"clear_scholarship_component_id,omitempty"`
	ClearMaxAmount   bool `json:"clear_scholarship_max_amount,omitempty"`
}

type ScholarshipResponse struct {
	ScholarshipID          uuid.UUID              `json:"scholarship_id"`
	ScholarshipOrgID       uuid.UUID              `json:"scholarship_org_id"`
	ScholarshipName        string                 `json:"scholarship_name"`
	ScholarshipType        calc.DiscountKind      `json:"scholarship_type"`
	ScholarshipBasis       model.ScholarshipBasis `json:"scholarship_basis"`
	ScholarshipValue       decimal.Decimal        `json:"scholarship_value"`
	ScholarshipComponentID *uuid.UUID             `json:"scholarship_component_id,omitempty"`
	ScholarshipMaxAmount   *int64                 `json:"scholarship_max_amount,omitempty"`
	ScholarshipDescription *string                `json:"scholarship_description,omitempty"`
	ScholarshipIsActive    bool                   `json:"scholarship_is_active"`
	ScholarshipCreatedAt   time.Time              `json:"scholarship_created_at"`
	ScholarshipUpdatedAt   time.Time              `json:"scholarship_updated_at"`
}

func (d ScholarshipCreateDTO) ToInput() service.ScholarshipInput {
	return service.ScholarshipInput{
		Name:        d.ScholarshipName,
		Type:        calc.DiscountKind(d.ScholarshipType),
		Basis:       model.ScholarshipBasis(d.ScholarshipBasis),
		Value:       d.ScholarshipValue,
		ComponentID: d.ScholarshipComponentID,
		MaxAmount:   d.ScholarshipMaxAmount,
		Description: trimOrNil(d.ScholarshipDescription),
	}
}

func ApplyScholarshipUpdate(m *model.Scholarship, d ScholarshipUpdateDTO) service.ScholarshipInput {
	in := service.ScholarshipInput{
		Name:        m.ScholarshipName,
		Type:        m.ScholarshipType,
		Basis:       m.ScholarshipBasis,
		Value:       m.ScholarshipValue,
		ComponentID: m.ScholarshipComponentID,
		MaxAmount:   m.ScholarshipMaxAmount,
		Description: m.ScholarshipDescription,
	}
	if d.ScholarshipName != nil {
		in.Name = *d.ScholarshipName
	}
	if d.ScholarshipType != nil {
		in.Type = calc.DiscountKind(*d.ScholarshipType)
	}
	if d.ScholarshipBasis != nil {
		in.Basis = model.ScholarshipBasis(*d.ScholarshipBasis)
	}
	if d.ScholarshipValue != nil {
		in.Value = *d.ScholarshipValue
	}
	if d.ScholarshipComponentID != nil {
		in.ComponentID = d.ScholarshipComponentID
	}
	if d.ClearComponentID {
		in.ComponentID = nil
	}
	if d.ScholarshipMaxAmount != nil {
		in.MaxAmount = d.ScholarshipMaxAmount
	}
	if d.ClearMaxAmount {
		in.MaxAmount = nil
	}
	if d.ScholarshipDescription != nil {
		in.Description = trimOrNil(d.ScholarshipDescription)
	}
	return in
}

func ToScholarshipResponse(m model.Scholarship) ScholarshipResponse {
	return ScholarshipResponse{
		ScholarshipID:          m.ScholarshipID,
		ScholarshipOrgID:       m.ScholarshipOrgID,
		ScholarshipName:        m.ScholarshipName,
		ScholarshipType:        m.ScholarshipType,
		ScholarshipBasis:       m.ScholarshipBasis,
		ScholarshipValue:       m.ScholarshipValue,
		ScholarshipComponentID: m.ScholarshipComponentID,
		ScholarshipMaxAmount:   m.ScholarshipMaxAmount,
		ScholarshipDescription: m.ScholarshipDescription,
		ScholarshipIsActive:    m.ScholarshipIsActive,
		ScholarshipCreatedAt:   m.ScholarshipCreatedAt,
		ScholarshipUpdatedAt:   m.ScholarshipUpdatedAt,
	}
}

func ToScholarshipResponses(list []model.Scholarship) []ScholarshipResponse {
	out := make([]ScholarshipResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToScholarshipResponse(m))
	}
	return out
}
