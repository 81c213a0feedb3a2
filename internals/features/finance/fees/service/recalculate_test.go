package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/fees/model"
)

func TestRecalculate_NoStructure(t *testing.T) {
	f := newFixture(t)
	st, err := f.svc.Recalculator.Recalculate(f.ctx, f.scope, f.studentID, f.sessionID)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestRecalculate_Idempotent(t *testing.T) {
	f := newFixture(t)
	st := f.structure(item(f.tuition, 33333), item(f.transport, 7777))
	f.assign(f.percentScholarship("Merit", 15, ptr(int64(4000))).ScholarshipID)
	f.assign(f.fixedScholarship("Need", 1234).ScholarshipID)
	f.assign(f.waiverScholarship("Bus waiver", f.transport.FeeComponentID).ScholarshipID)

	first, err := f.svc.Recalculator.Recalculate(f.ctx, f.scope, f.studentID, f.sessionID)
	require.NoError(t, err)
	second, err := f.svc.Recalculator.RecalculateStructure(f.ctx, f.scope, st.FeeStructureID)
	require.NoError(t, err)

	assert.Equal(t, first.FeeStructureGrossAmount, second.FeeStructureGrossAmount)
	assert.Equal(t, first.FeeStructureScholarshipAmount, second.FeeStructureScholarshipAmount)
	assert.Equal(t, first.FeeStructureNetAmount, second.FeeStructureNetAmount)

	// 15% dari 41110 = 6166.5 → 6167, cap 4000; fixed 1234; waiver 7777
	assert.Equal(t, int64(4000+1234+7777), second.FeeStructureScholarshipAmount)
	assert.Equal(t, int64(41110-13011), second.FeeStructureNetAmount)
}

func TestRecalculate_CapAndRounding(t *testing.T) {
	f := newFixture(t)
	f.structure(item(f.tuition, 50000))
	a := f.assign(f.percentScholarship("Merit", 10, ptr(int64(3000))).ScholarshipID)
	assert.Equal(t, int64(3000), a.StudentScholarshipDiscountAmount)

	// 10% dari 50005 = 5000.5 → 5001 (half away from zero)
	f2 := newFixture(t)
	f2.structure(item(f2.tuition, 50005))
	b := f2.assign(f2.percentScholarship("Merit", 10, nil).ScholarshipID)
	assert.Equal(t, int64(5001), b.StudentScholarshipDiscountAmount)
}

func TestRecalculate_ConsistencyErrorRollsBack(t *testing.T) {
	f := newFixture(t)
	st := f.structure(item(f.tuition, 50000))
	sch := f.percentScholarship("Merit", 10, nil)
	a := f.assign(sch.ScholarshipID)

	// gross dirusak langsung di DB → tidak sama dengan Σ line item
	require.NoError(t, f.db.Model(&model.StudentFeeStructure{}).
		Where("fee_structure_id = ?", st.FeeStructureID).
		Update("fee_structure_gross_amount", 70000).Error)

	_, err := f.svc.Recalculator.Recalculate(f.ctx, f.scope, f.studentID, f.sessionID)
	var ce *ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, st.FeeStructureID, ce.StructureID)

	// discount_amount yang sempat dihitung (7000) ikut di-rollback
	var row model.StudentScholarship
	require.NoError(t, f.db.First(&row, "student_scholarship_id = ?", a.StudentScholarshipID).Error)
	assert.Equal(t, int64(5000), row.StudentScholarshipDiscountAmount)
	assert.Equal(t, int64(45000), f.reload(st.FeeStructureID).FeeStructureNetAmount)
}

func TestRecalculateStructure_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Recalculator.RecalculateStructure(f.ctx, f.scope, uuid.New())
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRecalculate_RequiresScope(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Recalculator.Recalculate(f.ctx, f.scope, f.studentID, f.sessionID)
	require.NoError(t, err)

	f.scope.OrgID = uuid.Nil
	_, err = f.svc.Recalculator.Recalculate(f.ctx, f.scope, f.studentID, f.sessionID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
