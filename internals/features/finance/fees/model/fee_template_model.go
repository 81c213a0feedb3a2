// file: internals/features/finance/fees/model/fee_template_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- MODEL fee_templates ---------------------------------------------------------
// Template tagihan level batch per session. Struktur siswa menyalin item-itemnya
// (snapshot): perubahan template tidak menyentuh struktur yang sudah dibuat.
type FeeTemplate struct {
	FeeTemplateID uuid.UUID `json:"fee_template_id" gorm:"column:fee_template_id;type:uuid;primaryKey"`

	FeeTemplateOrgID     uuid.UUID `json:"fee_template_org_id" gorm:"column:fee_template_org_id;type:uuid;not null;uniqueIndex:uq_fee_template_batch_session_name,priority:1"`
	FeeTemplateBatchID   uuid.UUID `json:"fee_template_batch_id" gorm:"column:fee_template_batch_id;type:uuid;not null;uniqueIndex:uq_fee_template_batch_session_name,priority:2"`
	FeeTemplateSessionID uuid.UUID `json:"fee_template_session_id" gorm:"column:fee_template_session_id;type:uuid;not null;uniqueIndex:uq_fee_template_batch_session_name,priority:3"`
	FeeTemplateName      string    `json:"fee_template_name" gorm:"column:fee_template_name;type:varchar(120);not null;uniqueIndex:uq_fee_template_batch_session_name,priority:4"`

	FeeTemplateIsActive bool `json:"fee_template_is_active" gorm:"column:fee_template_is_active;not null"`

	FeeTemplateCreatedAt time.Time `json:"fee_template_created_at" gorm:"column:fee_template_created_at;not null;autoCreateTime"`
	FeeTemplateUpdatedAt time.Time `json:"fee_template_updated_at" gorm:"column:fee_template_updated_at;not null;autoUpdateTime"`

	Items []FeeTemplateItem `json:"items,omitempty" gorm:"foreignKey:FeeTemplateItemTemplateID;references:FeeTemplateID;constraint:OnDelete:CASCADE"`
}

func (FeeTemplate) TableName() string { return "fee_templates" }

func (m *FeeTemplate) BeforeCreate(tx *gorm.DB) error {
	if m.FeeTemplateID == uuid.Nil {
		m.FeeTemplateID = uuid.New()
	}
	return nil
}

// Total = Σ amount item.
func (m *FeeTemplate) Total() int64 {
	var total int64
	for _, it := range m.Items {
		total += it.FeeTemplateItemAmount
	}
	return total
}

// --- MODEL fee_template_items ---------------------------------------------------
type FeeTemplateItem struct {
	FeeTemplateItemID             uuid.UUID `json:"fee_template_item_id" gorm:"column:fee_template_item_id;type:uuid;primaryKey"`
	FeeTemplateItemTemplateID     uuid.UUID `json:"fee_template_item_template_id" gorm:"column:fee_template_item_template_id;type:uuid;not null;index"`
	FeeTemplateItemFeeComponentID uuid.UUID `json:"fee_template_item_fee_component_id" gorm:"column:fee_template_item_fee_component_id;type:uuid;not null"`
	FeeTemplateItemAmount         int64     `json:"fee_template_item_amount" gorm:"column:fee_template_item_amount;type:bigint;not null;check:fee_template_item_amount >= 0"`
	FeeTemplateItemSortOrder      int       `json:"fee_template_item_sort_order" gorm:"column:fee_template_item_sort_order;not null"`
}

func (FeeTemplateItem) TableName() string { return "fee_template_items" }

func (m *FeeTemplateItem) BeforeCreate(tx *gorm.DB) error {
	if m.FeeTemplateItemID == uuid.Nil {
		m.FeeTemplateItemID = uuid.New()
	}
	return nil
}
