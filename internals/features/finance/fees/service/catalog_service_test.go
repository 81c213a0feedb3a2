package service

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

/* =========================================================
   Fee components
========================================================= */

func TestComponents_CRUD(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Components.Create(f.ctx, f.scope, ComponentInput{Name: " Tuition ", Type: model.FeeComponentTuition})
	assert.True(t, errors.Is(err, ErrDuplicateComponent))

	_, err = f.svc.Components.Create(f.ctx, f.scope, ComponentInput{Name: "Lab", Type: "spaceship"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.FieldMap(), "fee_component_type")

	upd, err := f.svc.Components.Update(f.ctx, f.scope, f.transport.FeeComponentID, ComponentInput{
		Name: "Bus Antar Jemput", Type: model.FeeComponentTransport, Description: ptr("rute kota"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bus Antar Jemput", upd.FeeComponentName)

	off, err := f.svc.Components.SetActive(f.ctx, f.scope, upd.FeeComponentID, false)
	require.NoError(t, err)
	assert.False(t, off.FeeComponentIsActive)

	active := true
	rows, total, err := f.svc.Components.List(f.ctx, f.scope, repository.ComponentFilter{IsActive: &active}, pageAll())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Tuition", rows[0].FeeComponentName)

	rows, total, err = f.svc.Components.List(f.ctx, f.scope, repository.ComponentFilter{Q: "antar"}, pageAll())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, upd.FeeComponentID, rows[0].FeeComponentID)

	_, err = f.svc.Components.Get(f.ctx, helperAuth.TenantScope{OrgID: uuid.New()}, upd.FeeComponentID)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

/* =========================================================
   Scholarships
========================================================= */

func TestScholarships_Validation(t *testing.T) {
	f := newFixture(t)
	missing := uuid.New()

	cases := []struct {
		name   string
		in     ScholarshipInput
		fields []string
	}{
		{"percentage over 100", ScholarshipInput{Name: "A", Type: calc.DiscountPercentage, Value: decimal.NewFromInt(101)}, []string{"value"}},
		{"percentage zero", ScholarshipInput{Name: "A", Type: calc.DiscountPercentage, Value: decimal.Zero}, []string{"value"}},
		{"cap on fixed", ScholarshipInput{Name: "A", Type: calc.DiscountFixedAmount, Value: decimal.NewFromInt(10), MaxAmount: ptr(int64(5))}, []string{"max_amount"}},
		{"fractional fixed", ScholarshipInput{Name: "A", Type: calc.DiscountFixedAmount, Value: decimal.RequireFromString("10.5")}, []string{"value"}},
		{"waiver without component", ScholarshipInput{Name: "A", Type: calc.DiscountComponentWaiver}, []string{"component_id"}},
		{"fixed above ceiling", ScholarshipInput{Name: "A", Type: calc.DiscountFixedAmount, Value: decimal.NewFromInt(math.MaxInt64)}, []string{"value"}},
		{"cap above ceiling", ScholarshipInput{Name: "A", Type: calc.DiscountPercentage, Value: decimal.NewFromInt(10), MaxAmount: ptr(calc.MaxAmount + 1)}, []string{"max_amount"}},
		{"unknown type", ScholarshipInput{Name: "A", Type: "bogus", Value: decimal.NewFromInt(1)}, []string{"type"}},
		{"missing name and bad basis", ScholarshipInput{Type: calc.DiscountFixedAmount, Basis: "luck", Value: decimal.NewFromInt(1)}, []string{"name", "basis"}},
		{"waiver component not in org", ScholarshipInput{Name: "A", Type: calc.DiscountComponentWaiver, ComponentID: &missing}, []string{"component_id"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Scholarships.Create(f.ctx, f.scope, tc.in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			for _, field := range tc.fields {
				assert.Contains(t, ve.FieldMap(), "scholarship_"+field)
			}
		})
	}
}

func TestScholarships_DuplicateName(t *testing.T) {
	f := newFixture(t)
	f.percentScholarship("Merit", 10, nil)
	_, err := f.svc.Scholarships.Create(f.ctx, f.scope, ScholarshipInput{
		Name: "Merit", Type: calc.DiscountFixedAmount, Value: decimal.NewFromInt(100),
	})
	assert.True(t, errors.Is(err, ErrDuplicateScholarship))

	// org lain boleh pakai nama yang sama
	_, err = f.svc.Scholarships.Create(f.ctx, helperAuth.TenantScope{OrgID: uuid.New()}, ScholarshipInput{
		Name: "Merit", Type: calc.DiscountFixedAmount, Value: decimal.NewFromInt(100),
	})
	assert.NoError(t, err)
}

func TestScholarships_UpdateRecalculatesHolders(t *testing.T) {
	f := newFixture(t)
	st := f.structure(item(f.tuition, 50000))
	sch := f.percentScholarship("Merit", 10, nil)
	a := f.assign(sch.ScholarshipID)
	assert.Equal(t, int64(45000), f.reload(st.FeeStructureID).FeeStructureNetAmount)

	// siswa kedua tanpa struktur: tidak boleh bikin error
	second := f.addStudent(f.scope)
	_, err := f.svc.Assignments.Assign(f.ctx, f.scope, AssignInput{
		StudentID: second, ScholarshipID: sch.ScholarshipID, SessionID: f.sessionID,
	})
	require.NoError(t, err)

	_, err = f.svc.Scholarships.Update(f.ctx, f.scope, sch.ScholarshipID, ScholarshipInput{
		Name: "Merit", Type: calc.DiscountPercentage, Basis: model.ScholarshipBasisMerit, Value: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	got := f.reload(st.FeeStructureID)
	assert.Equal(t, int64(10000), got.FeeStructureScholarshipAmount)
	assert.Equal(t, int64(40000), got.FeeStructureNetAmount)

	fresh, err := f.svc.Assignments.Get(f.ctx, f.scope, a.StudentScholarshipID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), fresh.StudentScholarshipDiscountAmount)
}

func TestScholarships_UpdateRecalculatesAllBranches(t *testing.T) {
	f := newFixture(t)
	sch := f.percentScholarship("Merit", 10, nil)
	stA := f.structure(item(f.tuition, 50000))
	f.assign(sch.ScholarshipID)

	branchB := helperAuth.TenantScope{OrgID: f.scope.OrgID, BranchID: uuid.New()}
	studentB := f.addStudent(branchB)
	stB, err := f.svc.Structures.Create(f.ctx, branchB, CreateStructureInput{
		StudentID: studentB, SessionID: f.sessionID, LineItems: []LineItemInput{item(f.tuition, 50000)},
	})
	require.NoError(t, err)
	_, err = f.svc.Assignments.Assign(f.ctx, branchB, AssignInput{
		StudentID: studentB, ScholarshipID: sch.ScholarshipID, SessionID: f.sessionID,
	})
	require.NoError(t, err)

	// cache branch B terisi sebelum update
	_, err = f.svc.Structures.Summary(f.ctx, branchB, studentB, f.sessionID)
	require.NoError(t, err)
	keyB := SummaryKey{OrgID: f.scope.OrgID, StudentID: studentB, SessionID: f.sessionID}
	f.cache.deletes = nil

	// admin branch A yang mengubah scholarship
	_, err = f.svc.Scholarships.Update(f.ctx, f.scope, sch.ScholarshipID, ScholarshipInput{
		Name: "Merit", Type: calc.DiscountPercentage, Basis: model.ScholarshipBasisMerit, Value: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	for _, id := range []uuid.UUID{stA.FeeStructureID, stB.FeeStructureID} {
		got := f.reload(id)
		assert.Equal(t, int64(10000), got.FeeStructureScholarshipAmount)
		assert.Equal(t, int64(40000), got.FeeStructureNetAmount)
	}
	assert.True(t, f.cache.deleted(keyB))

	sum, err := f.svc.Structures.Summary(f.ctx, branchB, studentB, f.sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), sum.NetAmount)
}

func TestScholarships_UpdateRefreshesPlaceholder(t *testing.T) {
	f := newFixture(t)
	sch := f.fixedScholarship("Yatim", 5000)
	a := f.assign(sch.ScholarshipID) // belum ada struktur
	assert.Equal(t, int64(5000), a.StudentScholarshipDiscountAmount)

	_, err := f.svc.Scholarships.Update(f.ctx, f.scope, sch.ScholarshipID, ScholarshipInput{
		Name: "Yatim", Type: calc.DiscountFixedAmount, Basis: model.ScholarshipBasisNeed, Value: decimal.NewFromInt(8000),
	})
	require.NoError(t, err)

	fresh, err := f.svc.Assignments.Get(f.ctx, f.scope, a.StudentScholarshipID)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), fresh.StudentScholarshipDiscountAmount)

	// berubah jadi percentage → placeholder 0
	_, err = f.svc.Scholarships.Update(f.ctx, f.scope, sch.ScholarshipID, ScholarshipInput{
		Name: "Yatim", Type: calc.DiscountPercentage, Basis: model.ScholarshipBasisNeed, Value: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	fresh, err = f.svc.Assignments.Get(f.ctx, f.scope, a.StudentScholarshipID)
	require.NoError(t, err)
	assert.Zero(t, fresh.StudentScholarshipDiscountAmount)
}

func TestScholarships_ListFilters(t *testing.T) {
	f := newFixture(t)
	f.percentScholarship("Merit A", 10, nil)
	f.percentScholarship("Merit B", 5, nil)
	f.fixedScholarship("Need", 1000)

	rows, total, err := f.svc.Scholarships.List(f.ctx, f.scope, repository.ScholarshipFilter{Type: string(calc.DiscountPercentage)}, pageAll())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, rows, 2)

	rows, total, err = f.svc.Scholarships.List(f.ctx, f.scope, repository.ScholarshipFilter{Basis: string(model.ScholarshipBasisNeed)}, pageAll())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Need", rows[0].ScholarshipName)

	rows, total, err = f.svc.Scholarships.List(f.ctx, f.scope, repository.ScholarshipFilter{}, repository.Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Merit B", rows[0].ScholarshipName)
}

/* =========================================================
   Fee templates
========================================================= */

func TestTemplates_CreateAndCopy(t *testing.T) {
	f := newFixture(t)
	batch := uuid.New()

	tpl, err := f.svc.Templates.Create(f.ctx, f.scope, TemplateInput{
		BatchID:   batch,
		SessionID: f.sessionID,
		Name:      "Kelas 7 Reguler",
		Items: []TemplateItemInput{
			{FeeComponentID: f.tuition.FeeComponentID, Amount: 45000},
			{FeeComponentID: f.transport.FeeComponentID, Amount: 5000},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), tpl.Total())

	f.assign(f.percentScholarship("Merit", 10, nil).ScholarshipID)
	st, err := f.svc.Structures.CreateFromTemplate(f.ctx, f.scope, f.studentID, f.sessionID, tpl.FeeTemplateID, nil)
	require.NoError(t, err)
	assert.Equal(t, model.FeeStructureSourceTemplate, st.FeeStructureSource)
	require.NotNil(t, st.FeeStructureTemplateID)
	assert.Equal(t, tpl.FeeTemplateID, *st.FeeStructureTemplateID)
	assert.Equal(t, int64(50000), st.FeeStructureGrossAmount)
	assert.Equal(t, int64(45000), st.FeeStructureNetAmount)
	for _, li := range st.LineItems {
		assert.Equal(t, li.LineItemOriginalAmount, li.LineItemAdjustedAmount)
	}

	// ubah template → struktur tidak ikut berubah
	_, err = f.svc.Templates.ReplaceItems(f.ctx, f.scope, tpl.FeeTemplateID, nil, []TemplateItemInput{
		{FeeComponentID: f.tuition.FeeComponentID, Amount: 99000},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), f.reload(st.FeeStructureID).FeeStructureGrossAmount)

	got, err := f.svc.Templates.Get(f.ctx, f.scope, tpl.FeeTemplateID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(99000), got.Total())
}

func TestTemplates_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Templates.Create(f.ctx, f.scope, TemplateInput{
		BatchID: uuid.New(), SessionID: f.sessionID, Name: "X",
		Items: []TemplateItemInput{
			{FeeComponentID: f.tuition.FeeComponentID, Amount: 1},
			{FeeComponentID: f.tuition.FeeComponentID, Amount: 2},
		},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.FieldMap(), "items[1].fee_component_id")

	_, err = f.svc.Templates.Create(f.ctx, f.scope, TemplateInput{
		BatchID: uuid.New(), SessionID: f.sessionID, Name: "X",
		Items: []TemplateItemInput{{FeeComponentID: f.tuition.FeeComponentID, Amount: -5}},
	})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.FieldMap(), "items[0].amount")

	_, err = f.svc.Templates.Create(f.ctx, f.scope, TemplateInput{
		BatchID: uuid.New(), SessionID: f.sessionID, Name: "X",
		Items: []TemplateItemInput{
			{FeeComponentID: f.tuition.FeeComponentID, Amount: math.MaxInt64},
			{FeeComponentID: f.transport.FeeComponentID, Amount: 10},
		},
	})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.FieldMap(), "items[0].amount")

	batch := uuid.New()
	in := TemplateInput{
		BatchID: batch, SessionID: f.sessionID, Name: "Dup",
		Items: []TemplateItemInput{{FeeComponentID: f.tuition.FeeComponentID, Amount: 1}},
	}
	_, err = f.svc.Templates.Create(f.ctx, f.scope, in)
	require.NoError(t, err)
	_, err = f.svc.Templates.Create(f.ctx, f.scope, in)
	assert.True(t, errors.Is(err, ErrDuplicateTemplate))
}

func TestCreateFromTemplate_Rejections(t *testing.T) {
	f := newFixture(t)
	tpl, err := f.svc.Templates.Create(f.ctx, f.scope, TemplateInput{
		BatchID: uuid.New(), SessionID: f.sessionID, Name: "T",
		Items: []TemplateItemInput{{FeeComponentID: f.tuition.FeeComponentID, Amount: 1000}},
	})
	require.NoError(t, err)

	otherSession := f.addSession(f.scope.OrgID)
	_, err = f.svc.Structures.CreateFromTemplate(f.ctx, f.scope, f.studentID, otherSession, tpl.FeeTemplateID, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = f.svc.Templates.SetActive(f.ctx, f.scope, tpl.FeeTemplateID, false)
	require.NoError(t, err)
	_, err = f.svc.Structures.CreateFromTemplate(f.ctx, f.scope, f.studentID, f.sessionID, tpl.FeeTemplateID, nil)
	require.ErrorAs(t, err, &ve)

	_, err = f.svc.Structures.CreateFromTemplate(f.ctx, f.scope, f.studentID, f.sessionID, uuid.New(), nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}
