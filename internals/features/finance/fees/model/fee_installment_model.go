// file: internals/features/finance/fees/model/fee_installment_model.go
package model

import (
	"time"

	"github.com/google/uuid"
)

type FeeInstallmentStatus string

const (
	FeeInstallmentPending FeeInstallmentStatus = "pending"
	FeeInstallmentPaid    FeeInstallmentStatus = "paid"
	FeeInstallmentOverdue FeeInstallmentStatus = "overdue"
)

// --- MODEL fee_installments (read-only di sini) ---------------------------------------
// Ditulis oleh generator cicilan (di luar engine) dari net_amount struktur.
type FeeInstallment struct {
	FeeInstallmentID          uuid.UUID            `json:"fee_installment_id" gorm:"column:fee_installment_id;type:uuid;primaryKey"`
	FeeInstallmentOrgID       uuid.UUID            `json:"fee_installment_org_id" gorm:"column:fee_installment_org_id;type:uuid;not null;index"`
	FeeInstallmentStructureID uuid.UUID            `json:"fee_installment_structure_id" gorm:"column:fee_installment_structure_id;type:uuid;not null;index"`
	FeeInstallmentSequence    int                  `json:"fee_installment_sequence" gorm:"column:fee_installment_sequence;not null"`
	FeeInstallmentDueDate     time.Time            `json:"fee_installment_due_date" gorm:"column:fee_installment_due_date;type:date;not null"`
	FeeInstallmentAmount      int64                `json:"fee_installment_amount" gorm:"column:fee_installment_amount;type:bigint;not null"`
	FeeInstallmentStatus      FeeInstallmentStatus `json:"fee_installment_status" gorm:"column:fee_installment_status;type:varchar(20);not null"`
	FeeInstallmentPaidAt      *time.Time           `json:"fee_installment_paid_at,omitempty" gorm:"column:fee_installment_paid_at"`
}

func (FeeInstallment) TableName() string { return "fee_installments" }
