// File: internals/features/finance/fees/dto/fee_structure_dto.go
package dto

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/service"
)

////////////////////////////////////////////////////////////////////////////////
// REQUEST
////////////////////////////////////////////////////////////////////////////////

// adjusted_amount kosong → sama dengan amount. waived → adjusted dipaksa 0.
type LineItemDTO struct {
	FeeComponentID uuid.UUID `json:"fee_component_id" validate:"required"`
	Amount         int64     `json:"amount" validate:"gte=0,lte=1000000000000000"`
	AdjustedAmount *int64    `json:"adjusted_amount,omitempty" validate:"omitempty,gte=0,lte=1000000000000000"`
	Waived         bool      `json:"waived,omitempty"`
	WaiverReason   *string   `json:"waiver_reason,omitempty"`
}

// Create: source=template → template_id wajib, line_items boleh kosong (disalin dari template).
type FeeStructureCreateDTO struct {
	StudentID  uuid.UUID     `json:"student_id" validate:"required"`
	SessionID  uuid.UUID     `json:"session_id" validate:"required"`
	Source     string        `json:"source,omitempty" validate:"omitempty,oneof=template custom"`
	TemplateID *uuid.UUID    `json:"template_id,omitempty"`
	LineItems  []LineItemDTO `json:"line_items,omitempty" validate:"omitempty,dive"`

	CustomDiscountType    *string          `json:"custom_discount_type,omitempty"`
	CustomDiscountValue   *decimal.Decimal `json:"custom_discount_value,omitempty"`
	CustomDiscountRemarks *string          `json:"custom_discount_remarks,omitempty"`
}

type FeeStructureLineItemsDTO struct {
	LineItems []LineItemDTO `json:"line_items" validate:"required,min=1,dive"`
}

type CustomDiscountDTO struct {
	CustomDiscountType    string          `json:"custom_discount_type" validate:"required"`
	CustomDiscountValue   decimal.Decimal `json:"custom_discount_value"`
	CustomDiscountRemarks *string         `json:"custom_discount_remarks,omitempty"`
}

func toLineItemInputs(items []LineItemDTO) []service.LineItemInput {
	out := make([]service.LineItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, service.LineItemInput{
			FeeComponentID: it.FeeComponentID,
			Amount:         it.Amount,
			AdjustedAmount: it.AdjustedAmount,
			Waived:         it.Waived,
			WaiverReason:   trimOrNil(it.WaiverReason),
		})
	}
	return out
}

func (d FeeStructureCreateDTO) CustomDiscountInput() *service.CustomDiscountInput {
	if d.CustomDiscountType == nil {
		return nil
	}
	in := &service.CustomDiscountInput{
		Type:    calc.DiscountKind(*d.CustomDiscountType),
		Remarks: trimOrNil(d.CustomDiscountRemarks),
	}
	if d.CustomDiscountValue != nil {
		in.Value = *d.CustomDiscountValue
	}
	return in
}

// FromTemplate: true kalau structure dibuat dengan menyalin item template.
func (d FeeStructureCreateDTO) FromTemplate() bool {
	return d.TemplateID != nil && len(d.LineItems) == 0
}

func (d FeeStructureCreateDTO) ToInput() service.CreateStructureInput {
	return service.CreateStructureInput{
		StudentID:      d.StudentID,
		SessionID:      d.SessionID,
		Source:         model.FeeStructureSource(d.Source),
		TemplateID:     d.TemplateID,
		LineItems:      toLineItemInputs(d.LineItems),
		CustomDiscount: d.CustomDiscountInput(),
	}
}

func (d FeeStructureLineItemsDTO) ToItems() []service.LineItemInput {
	return toLineItemInputs(d.LineItems)
}

func (d CustomDiscountDTO) ToInput() *service.CustomDiscountInput {
	return &service.CustomDiscountInput{
		Type:    calc.DiscountKind(d.CustomDiscountType),
		Value:   d.CustomDiscountValue,
		Remarks: trimOrNil(d.CustomDiscountRemarks),
	}
}

////////////////////////////////////////////////////////////////////////////////
// RESPONSE
////////////////////////////////////////////////////////////////////////////////

type LineItemResponse struct {
	LineItemID             uuid.UUID `json:"line_item_id"`
	LineItemFeeComponentID uuid.UUID `json:"line_item_fee_component_id"`
	LineItemComponentName  string    `json:"line_item_component_name"`
	LineItemComponentType  string    `json:"line_item_component_type"`
	LineItemOriginalAmount int64     `json:"line_item_original_amount"`
	LineItemAdjustedAmount int64     `json:"line_item_adjusted_amount"`
	LineItemAdjustedText   string    `json:"line_item_adjusted_text"`
	LineItemWaived         bool      `json:"line_item_waived"`
	LineItemWaiverReason   *string   `json:"line_item_waiver_reason,omitempty"`
	LineItemSortOrder      int       `json:"line_item_sort_order"`
}

type FeeStructureResponse struct {
	FeeStructureID         uuid.UUID                `json:"fee_structure_id"`
	FeeStructureOrgID      uuid.UUID                `json:"fee_structure_org_id"`
	FeeStructureBranchID   uuid.UUID                `json:"fee_structure_branch_id"`
	FeeStructureStudentID  uuid.UUID                `json:"fee_structure_student_id"`
	FeeStructureSessionID  uuid.UUID                `json:"fee_structure_session_id"`
	FeeStructureSource     model.FeeStructureSource `json:"fee_structure_source"`
	FeeStructureTemplateID *uuid.UUID               `json:"fee_structure_template_id,omitempty"`

	FeeStructureGrossAmount       int64  `json:"fee_structure_gross_amount"`
	FeeStructureScholarshipAmount int64  `json:"fee_structure_scholarship_amount"`
	FeeStructureNetAmount         int64  `json:"fee_structure_net_amount"`
	FeeStructureGrossText         string `json:"fee_structure_gross_text"`
	FeeStructureNetText           string `json:"fee_structure_net_text"`

	FeeStructureCustomDiscountType    *calc.DiscountKind `json:"fee_structure_custom_discount_type,omitempty"`
	FeeStructureCustomDiscountValue   *decimal.Decimal   `json:"fee_structure_custom_discount_value,omitempty"`
	FeeStructureCustomDiscountAmount  int64              `json:"fee_structure_custom_discount_amount"`
	FeeStructureCustomDiscountRemarks *string            `json:"fee_structure_custom_discount_remarks,omitempty"`

	LineItems []LineItemResponse `json:"line_items"`

	FeeStructureCreatedAt time.Time `json:"fee_structure_created_at"`
	FeeStructureUpdatedAt time.Time `json:"fee_structure_updated_at"`
}

type FeeInstallmentResponse struct {
	FeeInstallmentID       uuid.UUID                  `json:"fee_installment_id"`
	FeeInstallmentSequence int                        `json:"fee_installment_sequence"`
	FeeInstallmentDueDate  time.Time                  `json:"fee_installment_due_date"`
	FeeInstallmentAmount   int64                      `json:"fee_installment_amount"`
	FeeInstallmentStatus   model.FeeInstallmentStatus `json:"fee_installment_status"`
	FeeInstallmentPaidAt   *time.Time                 `json:"fee_installment_paid_at,omitempty"`
}

type FeeStructureDetailResponse struct {
	FeeStructureResponse
	Scholarships []StudentScholarshipResponse `json:"scholarships"`
	Installments []FeeInstallmentResponse     `json:"installments"`
}

// snapshot nama/tipe komponen saat line item dibuat
type componentSnapshot struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func lineItemResponse(li model.StudentFeeLineItem, comps map[uuid.UUID]model.FeeComponent) LineItemResponse {
	out := LineItemResponse{
		LineItemID:             li.LineItemID,
		LineItemFeeComponentID: li.LineItemFeeComponentID,
		LineItemOriginalAmount: li.LineItemOriginalAmount,
		LineItemAdjustedAmount: li.LineItemAdjustedAmount,
		LineItemAdjustedText:   calc.Format(li.LineItemAdjustedAmount),
		LineItemWaived:         li.LineItemWaived,
		LineItemWaiverReason:   li.LineItemWaiverReason,
		LineItemSortOrder:      li.LineItemSortOrder,
	}
	var snap componentSnapshot
	if len(li.LineItemComponentSnapshot) > 0 && sonic.Unmarshal(li.LineItemComponentSnapshot, &snap) == nil {
		out.LineItemComponentName = snap.Name
		out.LineItemComponentType = snap.Type
	}
	// fallback ke data komponen terkini
	if out.LineItemComponentName == "" {
		if c, ok := comps[li.LineItemFeeComponentID]; ok {
			out.LineItemComponentName = c.FeeComponentName
			out.LineItemComponentType = string(c.FeeComponentType)
		}
	}
	return out
}

func ToFeeStructureResponse(m model.StudentFeeStructure, comps map[uuid.UUID]model.FeeComponent) FeeStructureResponse {
	items := make([]LineItemResponse, 0, len(m.LineItems))
	for _, li := range m.LineItems {
		items = append(items, lineItemResponse(li, comps))
	}
	var customValue *decimal.Decimal
	if m.FeeStructureCustomDiscountValue.Valid {
		v := m.FeeStructureCustomDiscountValue.Decimal
		customValue = &v
	}
	return FeeStructureResponse{
		FeeStructureID:                    m.FeeStructureID,
		FeeStructureOrgID:                 m.FeeStructureOrgID,
		FeeStructureBranchID:              m.FeeStructureBranchID,
		FeeStructureStudentID:             m.FeeStructureStudentID,
		FeeStructureSessionID:             m.FeeStructureSessionID,
		FeeStructureSource:                m.FeeStructureSource,
		FeeStructureTemplateID:            m.FeeStructureTemplateID,
		FeeStructureGrossAmount:           m.FeeStructureGrossAmount,
		FeeStructureScholarshipAmount:     m.FeeStructureScholarshipAmount,
		FeeStructureNetAmount:             m.FeeStructureNetAmount,
		FeeStructureGrossText:             calc.Format(m.FeeStructureGrossAmount),
		FeeStructureNetText:               calc.Format(m.FeeStructureNetAmount),
		FeeStructureCustomDiscountType:    m.FeeStructureCustomDiscountType,
		FeeStructureCustomDiscountValue:   customValue,
		FeeStructureCustomDiscountAmount:  m.FeeStructureCustomDiscountAmount,
		FeeStructureCustomDiscountRemarks: m.FeeStructureCustomDiscountRemarks,
		LineItems:                         items,
		FeeStructureCreatedAt:             m.FeeStructureCreatedAt,
		FeeStructureUpdatedAt:             m.FeeStructureUpdatedAt,
	}
}

func ToFeeStructureResponses(list []model.StudentFeeStructure) []FeeStructureResponse {
	out := make([]FeeStructureResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToFeeStructureResponse(m, nil))
	}
	return out
}

func ToFeeStructureDetailResponse(d *service.StructureDetail) FeeStructureDetailResponse {
	inst := make([]FeeInstallmentResponse, 0, len(d.Installments))
	for _, it := range d.Installments {
		inst = append(inst, FeeInstallmentResponse{
			FeeInstallmentID:       it.FeeInstallmentID,
			FeeInstallmentSequence: it.FeeInstallmentSequence,
			FeeInstallmentDueDate:  it.FeeInstallmentDueDate,
			FeeInstallmentAmount:   it.FeeInstallmentAmount,
			FeeInstallmentStatus:   it.FeeInstallmentStatus,
			FeeInstallmentPaidAt:   it.FeeInstallmentPaidAt,
		})
	}
	return FeeStructureDetailResponse{
		FeeStructureResponse: ToFeeStructureResponse(*d.Structure, d.Components),
		Scholarships:         ToStudentScholarshipResponses(d.Assignments),
		Installments:         inst,
	}
}
