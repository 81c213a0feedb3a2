// file: internals/features/finance/fees/model/fee_component_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- ENUM fee_component_type (tag kategori, informational) --------------------
type FeeComponentType string

const (
	FeeComponentTuition   FeeComponentType = "tuition"
	FeeComponentAdmission FeeComponentType = "admission"
	FeeComponentTransport FeeComponentType = "transport"
	FeeComponentExam      FeeComponentType = "exam"
	FeeComponentLibrary   FeeComponentType = "library"
	FeeComponentHostel    FeeComponentType = "hostel"
	FeeComponentMaterial  FeeComponentType = "material"
	FeeComponentOther     FeeComponentType = "other"
)

// --- MODEL fee_components ------------------------------------------------------
// Master item tagihan per organisasi. Tidak pernah dihapus fisik:
// line item historis mereferensikan ID-nya, jadi cukup di-nonaktifkan.
type FeeComponent struct {
	FeeComponentID uuid.UUID `json:"fee_component_id" gorm:"column:fee_component_id;type:uuid;primaryKey"`

	// Tenant
	FeeComponentOrgID uuid.UUID `json:"fee_component_org_id" gorm:"column:fee_component_org_id;type:uuid;not null;uniqueIndex:uq_fee_component_org_name,priority:1;index:ix_fee_component_org_active,priority:1"`

	FeeComponentName        string           `json:"fee_component_name" gorm:"column:fee_component_name;type:varchar(120);not null;uniqueIndex:uq_fee_component_org_name,priority:2"`
	FeeComponentType        FeeComponentType `json:"fee_component_type" gorm:"column:fee_component_type;type:varchar(40);not null"`
	FeeComponentDescription *string          `json:"fee_component_description,omitempty" gorm:"column:fee_component_description;type:text"`

	// Satu-satunya flag lifecycle yang boleh berubah (soft delete)
	FeeComponentIsActive bool `json:"fee_component_is_active" gorm:"column:fee_component_is_active;not null;index:ix_fee_component_org_active,priority:2"`

	FeeComponentCreatedAt time.Time `json:"fee_component_created_at" gorm:"column:fee_component_created_at;not null;autoCreateTime"`
	FeeComponentUpdatedAt time.Time `json:"fee_component_updated_at" gorm:"column:fee_component_updated_at;not null;autoUpdateTime"`
}

func (FeeComponent) TableName() string { return "fee_components" }

func (m *FeeComponent) BeforeCreate(tx *gorm.DB) error {
	if m.FeeComponentID == uuid.Nil {
		m.FeeComponentID = uuid.New()
	}
	return nil
}
