// File: internals/features/finance/fees/dto/fee_component_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/service"
)

// Create: org diambil dari token, bukan dari body.
type FeeComponentCreateDTO struct {
	FeeComponentName        string  `json:"fee_component_name" validate:"required,max=120"`
	FeeComponentType        string  `json:"fee_component_type" validate:"required"`
	FeeComponentDescription *string `json:"fee_component_description,omitempty"`
}

// Update (partial)
type FeeComponentUpdateDTO struct {
	FeeComponentName        *string `json:"fee_component_name,omitempty" validate:"omitempty,max=120"`
	FeeComponentType        *string `json:"fee_component_type,omitempty"`
	FeeComponentDescription *string `json:"fee_component_description,omitempty"`
}

type FeeComponentResponse struct {
	FeeComponentID          uuid.UUID              `json:"fee_component_id"`
	FeeComponentOrgID       uuid.UUID              `json:"fee_component_org_id"`
	FeeComponentName        string                 `json:"fee_component_name"`
	FeeComponentType        model.FeeComponentType `json:"fee_component_type"`
	FeeComponentDescription *string                `json:"fee_component_description,omitempty"`
	FeeComponentIsActive    bool                   `json:"fee_component_is_active"`
	FeeComponentCreatedAt   time.Time              `json:"fee_component_created_at"`
	FeeComponentUpdatedAt   time.Time              `json:"fee_component_updated_at"`
}

func (d FeeComponentCreateDTO) ToInput() service.ComponentInput {
	return service.ComponentInput{
		Name:        d.FeeComponentName,
		Type:        model.FeeComponentType(d.FeeComponentType),
		Description: trimOrNil(d.FeeComponentDescription),
	}
}

// ApplyFeeComponentUpdate: field yang tidak dikirim tetap pakai nilai lama.
func ApplyFeeComponentUpdate(m *model.FeeComponent, d FeeComponentUpdateDTO) service.ComponentInput {
	in := service.ComponentInput{
		Name:        m.FeeComponentName,
		Type:        m.FeeComponentType,
		Description: m.FeeComponentDescription,
	}
	if d.FeeComponentName != nil {
		in.Name = *d.FeeComponentName
	}
	if d.FeeComponentType != nil {
		in.Type = model.FeeComponentType(*d.FeeComponentType)
	}
	if d.FeeComponentDescription != nil {
		in.Description = trimOrNil(d.FeeComponentDescription)
	}
	return in
}

func ToFeeComponentResponse(m model.FeeComponent) FeeComponentResponse {
	return FeeComponentResponse{
		FeeComponentID:          m.FeeComponentID,
		FeeComponentOrgID:       m.FeeComponentOrgID,
		FeeComponentName:        m.FeeComponentName,
		FeeComponentType:        m.FeeComponentType,
		FeeComponentDescription: m.FeeComponentDescription,
		FeeComponentIsActive:    m.FeeComponentIsActive,
		FeeComponentCreatedAt:   m.FeeComponentCreatedAt,
		FeeComponentUpdatedAt:   m.FeeComponentUpdatedAt,
	}
}

func ToFeeComponentResponses(list []model.FeeComponent) []FeeComponentResponse {
	out := make([]FeeComponentResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToFeeComponentResponse(m))
	}
	return out
}

// ===== util kecil =====

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// Toggle aktif/nonaktif (dipakai komponen, beasiswa, template).
type ToggleActiveDTO struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
