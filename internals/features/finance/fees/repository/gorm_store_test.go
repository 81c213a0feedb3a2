package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"schoolku_backend/internals/features/finance/fees/model"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "uq_x" (SQLSTATE 23505)`)))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: fee_components.fee_component_org_id")))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}

func TestTransaction_RollbackAndNesting(t *testing.T) {
	db := openTestDB(t)
	st := NewGormStore(db)
	ctx := context.Background()
	scope := helperAuth.TenantScope{OrgID: uuid.New()}

	boom := errors.New("boom")
	err := st.Transaction(ctx, func(tx Store) error {
		require.NoError(t, tx.CreateComponent(ctx, &model.FeeComponent{
			FeeComponentOrgID: scope.OrgID, FeeComponentName: "Tuition", FeeComponentType: model.FeeComponentTuition, FeeComponentIsActive: true,
		}))
		// nested → transaksi yang sama
		return tx.Transaction(ctx, func(inner Store) error {
			assert.Same(t, tx, inner)
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	rows, total, err := st.ListComponents(ctx, scope, ComponentFilter{}, Page{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestStore_DuplicateAndNotFound(t *testing.T) {
	db := openTestDB(t)
	st := NewGormStore(db)
	ctx := context.Background()
	scope := helperAuth.TenantScope{OrgID: uuid.New()}

	c := &model.FeeComponent{FeeComponentOrgID: scope.OrgID, FeeComponentName: "Tuition", FeeComponentType: model.FeeComponentTuition}
	require.NoError(t, st.CreateComponent(ctx, c))
	err := st.CreateComponent(ctx, &model.FeeComponent{FeeComponentOrgID: scope.OrgID, FeeComponentName: "Tuition", FeeComponentType: model.FeeComponentOther})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = st.FindComponent(ctx, helperAuth.TenantScope{OrgID: uuid.New()}, c.FeeComponentID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.FindStructureFor(ctx, scope, uuid.New(), uuid.New(), true)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, st.DeactivateAssignment(ctx, uuid.New(), c.FeeComponentCreatedAt), ErrNotFound)
}

func TestStore_ActiveAssignmentPartialUnique(t *testing.T) {
	db := openTestDB(t)
	st := NewGormStore(db)
	ctx := context.Background()
	scope := helperAuth.TenantScope{OrgID: uuid.New(), BranchID: uuid.New()}
	student, scholarship, session := uuid.New(), uuid.New(), uuid.New()

	newRow := func() *model.StudentScholarship {
		return &model.StudentScholarship{
			StudentScholarshipOrgID:         scope.OrgID,
			StudentScholarshipBranchID:      scope.BranchID,
			StudentScholarshipStudentID:     student,
			StudentScholarshipScholarshipID: scholarship,
			StudentScholarshipSessionID:     session,
			StudentScholarshipIsActive:      true,
		}
	}

	first := newRow()
	require.NoError(t, st.CreateAssignment(ctx, first))
	assert.ErrorIs(t, st.CreateAssignment(ctx, newRow()), ErrDuplicate)

	require.NoError(t, st.DeactivateAssignment(ctx, first.StudentScholarshipID, first.StudentScholarshipCreatedAt))
	require.NoError(t, st.CreateAssignment(ctx, newRow()))

	pairs, err := st.ListStudentSessionsForScholarship(ctx, scope, scholarship)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, StudentSession{StudentID: student, SessionID: session}, pairs[0])
}

// SQL dirender lewat dialect postgres (DryRun, tanpa koneksi): sqlite membuang klausa locking.
func TestStructureForQuery_LockClause(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=schoolku dbname=schoolku sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	scope := helperAuth.TenantScope{OrgID: uuid.New(), BranchID: uuid.New()}
	studentID, sessionID := uuid.New(), uuid.New()
	render := func(lock bool) string {
		return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			var m model.StudentFeeStructure
			return structureForQuery(tx, scope, studentID, sessionID, lock).Take(&m)
		})
	}

	locked := render(true)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(locked), "FOR UPDATE"), locked)
	assert.Contains(t, locked, scope.BranchID.String())
	assert.Contains(t, locked, studentID.String())

	plain := render(false)
	assert.NotContains(t, plain, "FOR UPDATE")
	assert.Contains(t, plain, sessionID.String())
}

func TestStructureUpdatedAt(t *testing.T) {
	db := openTestDB(t)
	st := NewGormStore(db)
	ctx := context.Background()
	scope := helperAuth.TenantScope{OrgID: uuid.New(), BranchID: uuid.New()}
	studentID, sessionID := uuid.New(), uuid.New()

	_, err := st.StructureUpdatedAt(ctx, scope, studentID, sessionID)
	assert.ErrorIs(t, err, ErrNotFound)

	m := &model.StudentFeeStructure{
		FeeStructureOrgID:       scope.OrgID,
		FeeStructureBranchID:    scope.BranchID,
		FeeStructureStudentID:   studentID,
		FeeStructureSessionID:   sessionID,
		FeeStructureSource:      model.FeeStructureSourceCustom,
		FeeStructureGrossAmount: 0,
	}
	require.NoError(t, st.CreateStructure(ctx, m))
	before, err := st.StructureUpdatedAt(ctx, scope, studentID, sessionID)
	require.NoError(t, err)

	require.NoError(t, st.UpdateStructureSnapshot(ctx, m))
	after, err := st.StructureUpdatedAt(ctx, scope, studentID, sessionID)
	require.NoError(t, err)
	assert.True(t, after.After(before), "snapshot write must bump the version")

	// branch lain tidak melihat
	_, err = st.StructureUpdatedAt(ctx, helperAuth.TenantScope{OrgID: scope.OrgID, BranchID: uuid.New()}, studentID, sessionID)
	assert.ErrorIs(t, err, ErrNotFound)
}
