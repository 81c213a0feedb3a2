// file: internals/features/finance/fees/calc/money.go
package calc

import (
	"github.com/shopspring/decimal"
)

// Semua nominal disimpan sebagai int64 dalam minor unit (paise).
// Tidak ada float di jalur perhitungan.

var hundred = decimal.NewFromInt(100)

// PercentOf menghitung amount × percent / 100, dibulatkan half away from zero.
// Untuk input non-negatif hasilnya sama dengan floor(amount*percent/100 + 0.5).
func PercentOf(amount int64, percent decimal.Decimal) int64 {
	if amount == 0 || percent.IsZero() {
		return 0
	}
	// Shift(-2) = bagi 100 secara eksak (tanpa DivisionPrecision)
	return decimal.NewFromInt(amount).Mul(percent).Shift(-2).Round(0).IntPart()
}

// ClampPercent membatasi persen ke rentang [0, 100].
func ClampPercent(p decimal.Decimal) decimal.Decimal {
	if p.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

func Min(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func Max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func Sum(vals ...int64) int64 {
	var total int64
	for _, v := range vals {
		total += v
	}
	return total
}

// NetAmount = max(0, gross − scholarship − custom).
func NetAmount(gross, scholarship, custom int64) int64 {
	return Max(0, gross-scholarship-custom)
}

// Format menampilkan minor unit sebagai "1234.50".
func Format(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}
