// File: internals/features/finance/fees/dto/fee_template_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/service"
)

type FeeTemplateItemDTO struct {
	FeeComponentID uuid.UUID `json:"fee_component_id" validate:"required"`
	Amount         int64     `json:"amount" validate:"gte=0,lte=1000000000000000"`
}

type FeeTemplateCreateDTO struct {
	FeeTemplateBatchID   uuid.UUID            `json:"fee_template_batch_id" validate:"required"`
	FeeTemplateSessionID uuid.UUID            `json:"fee_template_session_id" validate:"required"`
	FeeTemplateName      string               `json:"fee_template_name" validate:"required,max=120"`
	Items                []FeeTemplateItemDTO `json:"items" validate:"required,min=1,dive"`
}

// Replace item (seluruhnya) + opsional ganti nama.
type FeeTemplateReplaceItemsDTO struct {
	FeeTemplateName *string              `json:"fee_template_name,omitempty" validate:"omitempty,max=120"`
	Items           []FeeTemplateItemDTO `json:"items" validate:"required,min=1,dive"`
}

type FeeTemplateItemResponse struct {
	FeeTemplateItemID             uuid.UUID `json:"fee_template_item_id"`
	FeeTemplateItemFeeComponentID uuid.UUID `json:"fee_template_item_fee_component_id"`
	FeeTemplateItemAmount         int64     `json:"fee_template_item_amount"`
	FeeTemplateItemSortOrder      int       `json:"fee_template_item_sort_order"`
}

type FeeTemplateResponse struct {
	FeeTemplateID        uuid.UUID                 `json:"fee_template_id"`
	FeeTemplateOrgID     uuid.UUID                 `json:"fee_template_org_id"`
	FeeTemplateBatchID   uuid.UUID                 `json:"fee_template_batch_id"`
	FeeTemplateSessionID uuid.UUID                 `json:"fee_template_session_id"`
	FeeTemplateName      string                    `json:"fee_template_name"`
	FeeTemplateIsActive  bool                      `json:"fee_template_is_active"`
	FeeTemplateTotal     int64                     `json:"fee_template_total"`
	FeeTemplateTotalText string                    `json:"fee_template_total_text"`
	Items                []FeeTemplateItemResponse `json:"items"`
	FeeTemplateCreatedAt time.Time                 `json:"fee_template_created_at"`
	FeeTemplateUpdatedAt time.Time                 `json:"fee_template_updated_at"`
}

func toTemplateItemInputs(items []FeeTemplateItemDTO) []service.TemplateItemInput {
	out := make([]service.TemplateItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, service.TemplateItemInput{FeeComponentID: it.FeeComponentID, Amount: it.Amount})
	}
	return out
}

func (d FeeTemplateCreateDTO) ToInput() service.TemplateInput {
	return service.TemplateInput{
		BatchID:   d.FeeTemplateBatchID,
		SessionID: d.FeeTemplateSessionID,
		Name:      d.FeeTemplateName,
		Items:     toTemplateItemInputs(d.Items),
	}
}

func (d FeeTemplateReplaceItemsDTO) ToItems() []service.TemplateItemInput {
	return toTemplateItemInputs(d.Items)
}

func ToFeeTemplateResponse(m model.FeeTemplate) FeeTemplateResponse {
	items := make([]FeeTemplateItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, FeeTemplateItemResponse{
			FeeTemplateItemID:             it.FeeTemplateItemID,
			FeeTemplateItemFeeComponentID: it.FeeTemplateItemFeeComponentID,
			FeeTemplateItemAmount:         it.FeeTemplateItemAmount,
			FeeTemplateItemSortOrder:      it.FeeTemplateItemSortOrder,
		})
	}
	total := m.Total()
	return FeeTemplateResponse{
		FeeTemplateID:        m.FeeTemplateID,
		FeeTemplateOrgID:     m.FeeTemplateOrgID,
		FeeTemplateBatchID:   m.FeeTemplateBatchID,
		FeeTemplateSessionID: m.FeeTemplateSessionID,
		FeeTemplateName:      m.FeeTemplateName,
		FeeTemplateIsActive:  m.FeeTemplateIsActive,
		FeeTemplateTotal:     total,
		FeeTemplateTotalText: calc.Format(total),
		Items:                items,
		FeeTemplateCreatedAt: m.FeeTemplateCreatedAt,
		FeeTemplateUpdatedAt: m.FeeTemplateUpdatedAt,
	}
}

func ToFeeTemplateResponses(list []model.FeeTemplate) []FeeTemplateResponse {
	out := make([]FeeTemplateResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToFeeTemplateResponse(m))
	}
	return out
}
