// file: internals/features/finance/fees/calc/discount.go
package calc

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxAmount = batas atas nominal (minor unit) per field; muat di numeric(14,2)
// dan jauh dari overflow int64 saat dijumlahkan.
const MaxAmount int64 = 1_000_000_000_000_000

var maxAmountDec = decimal.NewFromInt(MaxAmount)

// MinorUnits membulatkan value ke minor unit, dipotong di MaxAmount.
func MinorUnits(value decimal.Decimal) int64 {
	if value.GreaterThan(maxAmountDec) {
		return MaxAmount
	}
	return value.Round(0).IntPart()
}

// DiscountKind = mekanik diskon (dipakai scholarship & custom discount)
type DiscountKind string

const (
	DiscountPercentage      DiscountKind = "percentage"
	DiscountFixedAmount     DiscountKind = "fixed_amount"
	DiscountComponentWaiver DiscountKind = "component_waiver"
)

func (k DiscountKind) Valid() bool {
	switch k {
	case DiscountPercentage, DiscountFixedAmount, DiscountComponentWaiver:
		return true
	}
	return false
}

// Input untuk ComputeDiscount.
//   - MaxAmount hanya berlaku untuk percentage (nil = tanpa cap)
//   - ComponentAmount = adjusted amount line item yang di-waive (nil = komponen tidak ada di struktur)
type Input struct {
	Kind            DiscountKind
	Value           decimal.Decimal
	MaxAmount       *int64
	GrossAmount     int64
	ComponentAmount *int64
}

// ComputeDiscount adalah fungsi murni: tanpa I/O, deterministik.
// Hasil selalu di rentang [0, GrossAmount].
func ComputeDiscount(in Input) int64 {
	if in.GrossAmount <= 0 {
		return 0
	}

	var amount int64
	switch in.Kind {
	case DiscountPercentage:
		if !in.Value.IsPositive() {
			return 0
		}
		amount = PercentOf(in.GrossAmount, ClampPercent(in.Value))
		if in.MaxAmount != nil && *in.MaxAmount >= 0 {
			amount = Min(amount, *in.MaxAmount)
		}

	case DiscountFixedAmount:
		if !in.Value.IsPositive() {
			return 0
		}
		amount = MinorUnits(in.Value)

	case DiscountComponentWaiver:
		if in.ComponentAmount == nil {
			return 0
		}
		amount = *in.ComponentAmount

	default:
		return 0
	}

	return Max(0, Min(amount, in.GrossAmount))
}

// ComputeCustomDiscount: custom discount cuma percentage / fixed_amount, tanpa cap terpisah.
func ComputeCustomDiscount(kind DiscountKind, value decimal.Decimal, gross int64) int64 {
	if kind == DiscountComponentWaiver {
		return 0
	}
	return ComputeDiscount(Input{Kind: kind, Value: value, GrossAmount: gross})
}

// =========================================================
// Validasi definisi diskon
// =========================================================

// FieldError = pelanggaran pada satu field definisi diskon.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// DefinitionErrors dikembalikan ValidateDefinition (bisa lebih dari satu).
type DefinitionErrors []FieldError

func (es DefinitionErrors) Error() string {
	if len(es) == 0 {
		return "invalid discount definition"
	}
	msg := es[0].Error()
	if len(es) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(es)-1)
	}
	return msg
}

var ErrWaiverNotAllowed = errors.New("component_waiver is not allowed here")

// ValidateDefinition memeriksa konfigurasi diskon sebelum dihitung / disimpan.
func ValidateDefinition(kind DiscountKind, value decimal.Decimal, maxAmount *int64, componentID *uuid.UUID) error {
	var errs DefinitionErrors

	if !kind.Valid() {
		return DefinitionErrors{{Field: "type", Message: "must be one of percentage, fixed_amount, component_waiver"}}
	}

	switch kind {
	case DiscountPercentage:
		if !value.IsPositive() || value.GreaterThan(hundred) {
			errs = append(errs, FieldError{Field: "value", Message: "percentage must be greater than 0 and at most 100"})
		}
		if maxAmount != nil && *maxAmount <= 0 {
			errs = append(errs, FieldError{Field: "max_amount", Message: "must be greater than 0"})
		} else if maxAmount != nil && *maxAmount > MaxAmount {
			errs = append(errs, FieldError{Field: "max_amount", Message: fmt.Sprintf("must be <= %d", MaxAmount)})
		}
		if componentID != nil {
			errs = append(errs, FieldError{Field: "component_id", Message: "only allowed for component_waiver"})
		}

	case DiscountFixedAmount:
		if !value.IsPositive() {
			errs = append(errs, FieldError{Field: "value", Message: "must be greater than 0"})
		} else if !value.IsInteger() {
			errs = append(errs, FieldError{Field: "value", Message: "fixed amount must be a whole number of minor units"})
		} else if value.GreaterThan(maxAmountDec) {
			errs = append(errs, FieldError{Field: "value", Message: fmt.Sprintf("must be <= %d", MaxAmount)})
		}
		if maxAmount != nil {
			errs = append(errs, FieldError{Field: "max_amount", Message: "only allowed for percentage"})
		}
		if componentID != nil {
			errs = append(errs, FieldError{Field: "component_id", Message: "only allowed for component_waiver"})
		}

	case DiscountComponentWaiver:
		if componentID == nil || *componentID == uuid.Nil {
			errs = append(errs, FieldError{Field: "component_id", Message: "required for component_waiver"})
		}
		if maxAmount != nil {
			errs = append(errs, FieldError{Field: "max_amount", Message: "only allowed for percentage"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateCustomDefinition: custom discount tidak punya varian waiver & cap.
func ValidateCustomDefinition(kind DiscountKind, value decimal.Decimal) error {
	if kind == DiscountComponentWaiver {
		return DefinitionErrors{{Field: "custom_discount_type", Message: ErrWaiverNotAllowed.Error()}}
	}
	if err := ValidateDefinition(kind, value, nil, nil); err != nil {
		var de DefinitionErrors
		if errors.As(err, &de) {
			for i := range de {
				de[i].Field = "custom_discount_" + de[i].Field
			}
			return de
		}
		return err
	}
	return nil
}

// PlaceholderDiscount dipakai saat assignment dibuat sebelum struktur ada:
// fixed_amount → value, lainnya → 0. Dikoreksi oleh recalculation begitu struktur dibuat.
func PlaceholderDiscount(kind DiscountKind, value decimal.Decimal) int64 {
	if kind == DiscountFixedAmount && value.IsPositive() {
		return MinorUnits(value)
	}
	return 0
}
