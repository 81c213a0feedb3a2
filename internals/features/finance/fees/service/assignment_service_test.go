package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/fees/model"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

func TestAssign_PercentageThenRemove(t *testing.T) {
	f := newFixture(t)
	st := f.structure(item(f.tuition, 50000))
	merit := f.percentScholarship("Merit 10", 10, nil)

	a := f.assign(merit.ScholarshipID)
	assert.Equal(t, int64(5000), a.StudentScholarshipDiscountAmount)
	require.NotNil(t, a.Scholarship)
	assert.Equal(t, "Merit 10", a.Scholarship.ScholarshipName)

	got := f.reload(st.FeeStructureID)
	assert.Equal(t, int64(50000), got.FeeStructureGrossAmount)
	assert.Equal(t, int64(5000), got.FeeStructureScholarshipAmount)
	assert.Equal(t, int64(45000), got.FeeStructureNetAmount)

	removed, err := f.svc.Assignments.Remove(f.ctx, f.scope, a.StudentScholarshipID)
	require.NoError(t, err)
	assert.False(t, removed.StudentScholarshipIsActive)
	assert.NotNil(t, removed.StudentScholarshipRemovedAt)

	got = f.reload(st.FeeStructureID)
	assert.Equal(t, int64(0), got.FeeStructureScholarshipAmount)
	assert.Equal(t, int64(50000), got.FeeStructureNetAmount)

	// history tetap ada
	var row model.StudentScholarship
	require.NoError(t, f.db.First(&row, "student_scholarship_id = ?", a.StudentScholarshipID).Error)
	assert.False(t, row.StudentScholarshipIsActive)
}

func TestAssign_BeforeStructureUsesPlaceholder(t *testing.T) {
	f := newFixture(t)
	fixed := f.fixedScholarship("Sibling", 60000)
	pct := f.percentScholarship("Merit", 10, nil)

	a1 := f.assign(fixed.ScholarshipID)
	a2 := f.assign(pct.ScholarshipID)
	assert.Equal(t, int64(60000), a1.StudentScholarshipDiscountAmount)
	assert.Equal(t, int64(0), a2.StudentScholarshipDiscountAmount)

	st := f.structure(item(f.tuition, 50000))
	assert.Equal(t, int64(50000+5000), st.FeeStructureScholarshipAmount)
	assert.Equal(t, int64(0), st.FeeStructureNetAmount)

	var rows []model.StudentScholarship
	require.NoError(t, f.db.Order("student_scholarship_created_at, student_scholarship_id").
		Find(&rows, "student_scholarship_student_id = ?", f.studentID).Error)
	amounts := map[uuid.UUID]int64{}
	for _, r := range rows {
		amounts[r.StudentScholarshipID] = r.StudentScholarshipDiscountAmount
	}
	assert.Equal(t, int64(50000), amounts[a1.StudentScholarshipID])
	assert.Equal(t, int64(5000), amounts[a2.StudentScholarshipID])
}

func TestAssign_Stacking(t *testing.T) {
	f := newFixture(t)
	st := f.structure(item(f.tuition, 40000), item(f.transport, 10000))
	f.assign(f.percentScholarship("Merit", 10, nil).ScholarshipID)
	f.assign(f.fixedScholarship("Need", 3000).ScholarshipID)
	f.assign(f.waiverScholarship("Bus waiver", f.transport.FeeComponentID).ScholarshipID)

	got := f.reload(st.FeeStructureID)
	assert.Equal(t, int64(5000+3000+10000), got.FeeStructureScholarshipAmount)
	assert.Equal(t, int64(50000-18000), got.FeeStructureNetAmount)
}

func TestAssign_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.structure(item(f.tuition, 50000))
	sch := f.percentScholarship("Merit", 10, nil)
	first := f.assign(sch.ScholarshipID)

	_, err := f.svc.Assignments.Assign(f.ctx, f.scope, AssignInput{
		StudentID: f.studentID, ScholarshipID: sch.ScholarshipID, SessionID: f.sessionID,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateAssignment))
	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))

	// setelah remove, assign ulang boleh
	_, err = f.svc.Assignments.Remove(f.ctx, f.scope, first.StudentScholarshipID)
	require.NoError(t, err)
	again := f.assign(sch.ScholarshipID)
	assert.NotEqual(t, first.StudentScholarshipID, again.StudentScholarshipID)
}

func TestAssign_InactiveScholarshipRejected(t *testing.T) {
	f := newFixture(t)
	sch := f.percentScholarship("Merit", 10, nil)
	_, err := f.svc.Scholarships.SetActive(f.ctx, f.scope, sch.ScholarshipID, false)
	require.NoError(t, err)

	_, err = f.svc.Assignments.Assign(f.ctx, f.scope, AssignInput{
		StudentID: f.studentID, ScholarshipID: sch.ScholarshipID, SessionID: f.sessionID,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.FieldMap(), "scholarship_id")
}

func TestAssign_DeactivatedScholarshipKeepsApplying(t *testing.T) {
	f := newFixture(t)
	st := f.structure(item(f.tuition, 50000))
	sch := f.percentScholarship("Merit", 10, nil)
	f.assign(sch.ScholarshipID)

	_, err := f.svc.Scholarships.SetActive(f.ctx, f.scope, sch.ScholarshipID, false)
	require.NoError(t, err)

	got, err := f.svc.Recalculator.Recalculate(f.ctx, f.scope, f.studentID, f.sessionID)
	require.NoError(t, err)
	assert.Equal(t, st.FeeStructureID, got.FeeStructureID)
	assert.Equal(t, int64(45000), got.FeeStructureNetAmount)
}

func TestRemove_NotFoundCases(t *testing.T) {
	f := newFixture(t)
	a := f.assign(f.percentScholarship("Merit", 10, nil).ScholarshipID)

	var nf *NotFoundError
	_, err := f.svc.Assignments.Remove(f.ctx, f.scope, uuid.New())
	assert.ErrorAs(t, err, &nf)

	other := helperAuth.TenantScope{OrgID: uuid.New()}
	_, err = f.svc.Assignments.Remove(f.ctx, other, a.StudentScholarshipID)
	assert.ErrorAs(t, err, &nf)

	_, err = f.svc.Assignments.Remove(f.ctx, f.scope, a.StudentScholarshipID)
	require.NoError(t, err)
	_, err = f.svc.Assignments.Remove(f.ctx, f.scope, a.StudentScholarshipID)
	assert.ErrorAs(t, err, &nf)
}

func TestAssign_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	sch := f.percentScholarship("Merit", 10, nil)

	// siswa org lain
	otherScope := helperAuth.TenantScope{OrgID: uuid.New(), BranchID: uuid.New()}
	foreignStudent := f.addStudent(otherScope)
	_, err := f.svc.Assignments.Assign(f.ctx, f.scope, AssignInput{
		StudentID: foreignStudent, ScholarshipID: sch.ScholarshipID, SessionID: f.sessionID,
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "student", nf.Entity)

	// branch lain dalam org yang sama
	otherBranch := helperAuth.TenantScope{OrgID: f.scope.OrgID, BranchID: uuid.New()}
	_, err = f.svc.Assignments.Assign(f.ctx, otherBranch, AssignInput{
		StudentID: f.studentID, ScholarshipID: sch.ScholarshipID, SessionID: f.sessionID,
	})
	require.ErrorAs(t, err, &nf)

	// scope org-wide (tanpa branch) boleh
	orgWide := helperAuth.TenantScope{OrgID: f.scope.OrgID}
	_, err = f.svc.Assignments.Assign(f.ctx, orgWide, AssignInput{
		StudentID: f.studentID, ScholarshipID: sch.ScholarshipID, SessionID: f.sessionID,
	})
	require.NoError(t, err)
}

func TestAssignments_List(t *testing.T) {
	f := newFixture(t)
	a := f.assign(f.percentScholarship("Merit", 10, nil).ScholarshipID)
	b := f.assign(f.fixedScholarship("Need", 1000).ScholarshipID)
	_, err := f.svc.Assignments.Remove(f.ctx, f.scope, a.StudentScholarshipID)
	require.NoError(t, err)

	rows, total, err := f.svc.Assignments.List(f.ctx, f.scope, assignmentFilter(f.studentID, true), pageAll())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, b.StudentScholarshipID, rows[0].StudentScholarshipID)

	rows, total, err = f.svc.Assignments.List(f.ctx, f.scope, assignmentFilter(f.studentID, false), pageAll())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)
}
