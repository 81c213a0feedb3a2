// file: internals/features/finance/fees/model/student_fee_structure_model.go
package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/fees/calc"
)

// --- ENUM fee_structure_source ---------------------------------------------------
type FeeStructureSource string

const (
	FeeStructureSourceTemplate FeeStructureSource = "template"
	FeeStructureSourceCustom   FeeStructureSource = "custom"
)

// --- MODEL student_fee_structures -----------------------------------------------
// Aggregate root: satu per (student, session).
// Invariant:
//   - gross = Σ line_item.adjusted_amount
//   - net   = max(0, gross − scholarship − custom)
type StudentFeeStructure struct {
	FeeStructureID uuid.UUID `json:"fee_structure_id" gorm:"column:fee_structure_id;type:uuid;primaryKey"`

	// Tenant
	FeeStructureOrgID    uuid.UUID `json:"fee_structure_org_id" gorm:"column:fee_structure_org_id;type:uuid;not null;index:ix_fee_structure_org_session,priority:1"`
	FeeStructureBranchID uuid.UUID `json:"fee_structure_branch_id" gorm:"column:fee_structure_branch_id;type:uuid;not null;index"`

	FeeStructureStudentID uuid.UUID `json:"fee_structure_student_id" gorm:"column:fee_structure_student_id;type:uuid;not null;uniqueIndex:uq_fee_structure_student_session,priority:1"`
	FeeStructureSessionID uuid.UUID `json:"fee_structure_session_id" gorm:"column:fee_structure_session_id;type:uuid;not null;uniqueIndex:uq_fee_structure_student_session,priority:2;index:ix_fee_structure_org_session,priority:2"`

	FeeStructureSource     FeeStructureSource `json:"fee_structure_source" gorm:"column:fee_structure_source;type:varchar(20);not null"`
	FeeStructureTemplateID *uuid.UUID         `json:"fee_structure_template_id,omitempty" gorm:"column:fee_structure_template_id;type:uuid"`

	// Nominal turunan (minor unit)
	FeeStructureGrossAmount       int64 `json:"fee_structure_gross_amount" gorm:"column:fee_structure_gross_amount;type:bigint;not null;check:fee_structure_gross_amount >= 0"`
	FeeStructureScholarshipAmount int64 `json:"fee_structure_scholarship_amount" gorm:"column:fee_structure_scholarship_amount;type:bigint;not null"`

	// Custom discount (opsional)
	FeeStructureCustomDiscountType    *calc.DiscountKind  `json:"fee_structure_custom_discount_type,omitempty" gorm:"column:fee_structure_custom_discount_type;type:varchar(30)"`
	FeeStructureCustomDiscountValue   decimal.NullDecimal `json:"fee_structure_custom_discount_value" gorm:"column:fee_structure_custom_discount_value;type:numeric(14,2)"`
	FeeStructureCustomDiscountAmount  int64               `json:"fee_structure_custom_discount_amount" gorm:"column:fee_structure_custom_discount_amount;type:bigint;not null"`
	FeeStructureCustomDiscountRemarks *string             `json:"fee_structure_custom_discount_remarks,omitempty" gorm:"column:fee_structure_custom_discount_remarks;type:text"`

	FeeStructureNetAmount int64 `json:"fee_structure_net_amount" gorm:"column:fee_structure_net_amount;type:bigint;not null;check:fee_structure_net_amount >= 0"`

	FeeStructureCreatedAt time.Time `json:"fee_structure_created_at" gorm:"column:fee_structure_created_at;not null;autoCreateTime"`
	FeeStructureUpdatedAt time.Time `json:"fee_structure_updated_at" gorm:"column:fee_structure_updated_at;not null;autoUpdateTime"`

	// Line item dimiliki penuh oleh struktur (cascade)
	LineItems []StudentFeeLineItem `json:"line_items,omitempty" gorm:"foreignKey:LineItemStructureID;references:FeeStructureID;constraint:OnDelete:CASCADE"`
}

func (StudentFeeStructure) TableName() string { return "student_fee_structures" }

func (m *StudentFeeStructure) BeforeCreate(tx *gorm.DB) error {
	if m.FeeStructureID == uuid.Nil {
		m.FeeStructureID = uuid.New()
	}
	return nil
}

// HasCustomDiscount true kalau tipe & nilai custom discount terisi.
func (m *StudentFeeStructure) HasCustomDiscount() bool {
	return m.FeeStructureCustomDiscountType != nil && m.FeeStructureCustomDiscountValue.Valid
}

// ComponentAmount mencari adjusted amount line item untuk satu komponen.
// nil = komponen tidak ada di struktur ini.
func (m *StudentFeeStructure) ComponentAmount(componentID uuid.UUID) *int64 {
	var found bool
	var total int64
	for _, li := range m.LineItems {
		if li.LineItemFeeComponentID == componentID {
			found = true
			total += li.LineItemAdjustedAmount
		}
	}
	if !found {
		return nil
	}
	return &total
}

// SumLineItems = Σ adjusted_amount.
func (m *StudentFeeStructure) SumLineItems() int64 {
	var total int64
	for _, li := range m.LineItems {
		total += li.LineItemAdjustedAmount
	}
	return total
}

// CheckInvariants dipanggil sebelum snapshot dipersist.
func (m *StudentFeeStructure) CheckInvariants() error {
	gross := m.FeeStructureGrossAmount
	net := m.FeeStructureNetAmount
	switch {
	case gross < 0:
		return fmt.Errorf("gross amount %d is negative", gross)
	case m.LineItems != nil && gross != m.SumLineItems():
		return fmt.Errorf("gross amount %d != sum of line items %d", gross, m.SumLineItems())
	case net < 0:
		return fmt.Errorf("net amount %d is negative", net)
	case net > gross:
		return fmt.Errorf("net amount %d exceeds gross amount %d", net, gross)
	case net != calc.NetAmount(gross, m.FeeStructureScholarshipAmount, m.FeeStructureCustomDiscountAmount):
		return fmt.Errorf("net amount %d does not match gross %d − scholarship %d − custom %d",
			net, gross, m.FeeStructureScholarshipAmount, m.FeeStructureCustomDiscountAmount)
	}
	return nil
}

// --- MODEL student_fee_line_items -----------------------------------------------
type StudentFeeLineItem struct {
	LineItemID          uuid.UUID `json:"line_item_id" gorm:"column:line_item_id;type:uuid;primaryKey"`
	LineItemStructureID uuid.UUID `json:"line_item_structure_id" gorm:"column:line_item_structure_id;type:uuid;not null;index"`

	LineItemFeeComponentID uuid.UUID `json:"line_item_fee_component_id" gorm:"column:line_item_fee_component_id;type:uuid;not null;index"`

	LineItemOriginalAmount int64   `json:"line_item_original_amount" gorm:"column:line_item_original_amount;type:bigint;not null;check:line_item_original_amount >= 0"`
	LineItemAdjustedAmount int64   `json:"line_item_adjusted_amount" gorm:"column:line_item_adjusted_amount;type:bigint;not null;check:line_item_adjusted_amount >= 0"`
	LineItemWaived         bool    `json:"line_item_waived" gorm:"column:line_item_waived;not null"`
	LineItemWaiverReason   *string `json:"line_item_waiver_reason,omitempty" gorm:"column:line_item_waiver_reason;type:text"`

	// Snapshot nama/tipe komponen saat line item ditulis
	LineItemComponentSnapshot datatypes.JSON `json:"line_item_component_snapshot,omitempty" gorm:"column:line_item_component_snapshot"`

	LineItemSortOrder int       `json:"line_item_sort_order" gorm:"column:line_item_sort_order;not null"`
	LineItemCreatedAt time.Time `json:"line_item_created_at" gorm:"column:line_item_created_at;not null;autoCreateTime"`
}

func (StudentFeeLineItem) TableName() string { return "student_fee_line_items" }

func (m *StudentFeeLineItem) BeforeCreate(tx *gorm.DB) error {
	if m.LineItemID == uuid.Nil {
		m.LineItemID = uuid.New()
	}
	// waived → adjusted dipaksa 0
	if m.LineItemWaived {
		m.LineItemAdjustedAmount = 0
	}
	return nil
}
