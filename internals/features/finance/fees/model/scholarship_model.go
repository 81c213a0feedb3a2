// file: internals/features/finance/fees/model/scholarship_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/fees/calc"
)

// --- ENUM scholarship_basis (informational saja, tidak mempengaruhi hitungan) ---
type ScholarshipBasis string

const (
	ScholarshipBasisMerit   ScholarshipBasis = "merit"
	ScholarshipBasisNeed    ScholarshipBasis = "need"
	ScholarshipBasisSports  ScholarshipBasis = "sports"
	ScholarshipBasisSibling ScholarshipBasis = "sibling"
	ScholarshipBasisStaff   ScholarshipBasis = "staff"
	ScholarshipBasisOther   ScholarshipBasis = "other"
)

// --- MODEL scholarships --------------------------------------------------------
// Definisi mekanik diskon per organisasi.
//   - percentage       → value 0..100, max_amount opsional
//   - fixed_amount     → value dalam minor unit
//   - component_waiver → component_id wajib, value diabaikan
type Scholarship struct {
	ScholarshipID uuid.UUID `json:"scholarship_id" gorm:"column:scholarship_id;type:uuid;primaryKey"`

	// Tenant
	ScholarshipOrgID uuid.UUID `json:"scholarship_org_id" gorm:"column:scholarship_org_id;type:uuid;not null;uniqueIndex:uq_scholarship_org_name,priority:1"`

	ScholarshipName  string            `json:"scholarship_name" gorm:"column:scholarship_name;type:varchar(120);not null;uniqueIndex:uq_scholarship_org_name,priority:2"`
	ScholarshipType  calc.DiscountKind `json:"scholarship_type" gorm:"column:scholarship_type;type:varchar(30);not null"`
	ScholarshipBasis ScholarshipBasis  `json:"scholarship_basis" gorm:"column:scholarship_basis;type:varchar(30);not null"`

	ScholarshipValue       decimal.Decimal `json:"scholarship_value" gorm:"column:scholarship_value;type:numeric(14,2);not null"`
	ScholarshipComponentID *uuid.UUID      `json:"scholarship_component_id,omitempty" gorm:"column:scholarship_component_id;type:uuid;index"`
	ScholarshipMaxAmount   *int64          `json:"scholarship_max_amount,omitempty" gorm:"column:scholarship_max_amount;type:bigint"`

	ScholarshipDescription *string `json:"scholarship_description,omitempty" gorm:"column:scholarship_description;type:text"`
	ScholarshipIsActive    bool    `json:"scholarship_is_active" gorm:"column:scholarship_is_active;not null"`

	ScholarshipCreatedAt time.Time `json:"scholarship_created_at" gorm:"column:scholarship_created_at;not null;autoCreateTime"`
	ScholarshipUpdatedAt time.Time `json:"scholarship_updated_at" gorm:"column:scholarship_updated_at;not null;autoUpdateTime"`
}

func (Scholarship) TableName() string { return "scholarships" }

func (m *Scholarship) BeforeCreate(tx *gorm.DB) error {
	if m.ScholarshipID == uuid.Nil {
		m.ScholarshipID = uuid.New()
	}
	return nil
}

// DiscountInput menyiapkan input kalkulator terhadap gross & komponen tertentu.
func (m *Scholarship) DiscountInput(gross int64, componentAmount *int64) calc.Input {
	return calc.Input{
		Kind:            m.ScholarshipType,
		Value:           m.ScholarshipValue,
		MaxAmount:       m.ScholarshipMaxAmount,
		GrossAmount:     gross,
		ComponentAmount: componentAmount,
	}
}
