package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// fixture = satu org dengan satu branch, satu siswa, satu session, dua komponen.
type fixture struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	svc   *Services
	cache *recordingCache
	scope helperAuth.TenantScope

	studentID uuid.UUID
	sessionID uuid.UUID
	tuition   *model.FeeComponent
	transport *model.FeeComponent
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		db:    db,
		cache: newRecordingCache(),
		scope: helperAuth.TenantScope{OrgID: uuid.New(), BranchID: uuid.New()},
	}
	f.svc = New(Options{
		Store:  repository.NewGormStore(db),
		Cache:  f.cache,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	f.studentID = f.addStudent(f.scope)
	f.sessionID = f.addSession(f.scope.OrgID)
	f.tuition = f.addComponent("Tuition", model.FeeComponentTuition)
	f.transport = f.addComponent("Bus", model.FeeComponentTransport)
	return f
}

func (f *fixture) addStudent(scope helperAuth.TenantScope) uuid.UUID {
	f.t.Helper()
	s := model.Student{
		StudentID:       uuid.New(),
		StudentOrgID:    scope.OrgID,
		StudentBranchID: scope.BranchID,
		StudentName:     "Siswa " + uuid.NewString()[:8],
		StudentIsActive: true,
	}
	require.NoError(f.t, f.db.Create(&s).Error)
	return s.StudentID
}

func (f *fixture) addSession(orgID uuid.UUID) uuid.UUID {
	f.t.Helper()
	s := model.AcademicSession{
		AcademicSessionID:    uuid.New(),
		AcademicSessionOrgID: orgID,
		AcademicSessionName:  "2025/2026",
	}
	require.NoError(f.t, f.db.Create(&s).Error)
	return s.AcademicSessionID
}

func (f *fixture) addComponent(name string, typ model.FeeComponentType) *model.FeeComponent {
	f.t.Helper()
	c, err := f.svc.Components.Create(f.ctx, f.scope, ComponentInput{Name: name, Type: typ})
	require.NoError(f.t, err)
	return c
}

func (f *fixture) percentScholarship(name string, pct int64, maxAmount *int64) *model.Scholarship {
	f.t.Helper()
	m, err := f.svc.Scholarships.Create(f.ctx, f.scope, ScholarshipInput{
		Name:      name,
		Type:      calc.DiscountPercentage,
		Basis:     model.ScholarshipBasisMerit,
		Value:     decimal.NewFromInt(pct),
		MaxAmount: maxAmount,
	})
	require.NoError(f.t, err)
	return m
}

func (f *fixture) fixedScholarship(name string, amount int64) *model.Scholarship {
	f.t.Helper()
	m, err := f.svc.Scholarships.Create(f.ctx, f.scope, ScholarshipInput{
		Name:  name,
		Type:  calc.DiscountFixedAmount,
		Basis: model.ScholarshipBasisNeed,
		Value: decimal.NewFromInt(amount),
	})
	require.NoError(f.t, err)
	return m
}

func (f *fixture) waiverScholarship(name string, componentID uuid.UUID) *model.Scholarship {
	f.t.Helper()
	m, err := f.svc.Scholarships.Create(f.ctx, f.scope, ScholarshipInput{
		Name:        name,
		Type:        calc.DiscountComponentWaiver,
		Basis:       model.ScholarshipBasisStaff,
		ComponentID: &componentID,
	})
	require.NoError(f.t, err)
	return m
}

// structure membuat struktur custom untuk siswa default.
func (f *fixture) structure(items ...LineItemInput) *model.StudentFeeStructure {
	f.t.Helper()
	st, err := f.svc.Structures.Create(f.ctx, f.scope, CreateStructureInput{
		StudentID: f.studentID,
		SessionID: f.sessionID,
		LineItems: items,
	})
	require.NoError(f.t, err)
	return st
}

func (f *fixture) assign(scholarshipID uuid.UUID) *model.StudentScholarship {
	f.t.Helper()
	a, err := f.svc.Assignments.Assign(f.ctx, f.scope, AssignInput{
		StudentID:     f.studentID,
		ScholarshipID: scholarshipID,
		SessionID:     f.sessionID,
	})
	require.NoError(f.t, err)
	return a
}

// reload membaca ulang struktur langsung dari DB.
func (f *fixture) reload(id uuid.UUID) *model.StudentFeeStructure {
	f.t.Helper()
	var st model.StudentFeeStructure
	require.NoError(f.t, f.db.Preload("LineItems").First(&st, "fee_structure_id = ?", id).Error)
	return &st
}

func item(c *model.FeeComponent, amount int64) LineItemInput {
	return LineItemInput{FeeComponentID: c.FeeComponentID, Amount: amount}
}

func ptr[T any](v T) *T { return &v }

/* =========================================================
   recordingCache: SummaryCache in-memory + catatan Delete
========================================================= */

type recordingCache struct {
	mu      sync.Mutex
	entries map[string]StructureSummary
	deletes []string
	gets    int
	hits    int
	// afterSet dipanggil di luar lock setelah Set
	afterSet func()
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string]StructureSummary{}}
}

func (c *recordingCache) Get(_ context.Context, key SummaryKey) (*StructureSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.entries[key.String()]
	if !ok {
		return nil, ErrCacheMiss
	}
	c.hits++
	return &v, nil
}

func (c *recordingCache) Set(_ context.Context, key SummaryKey, v StructureSummary) error {
	c.mu.Lock()
	c.entries[key.String()] = v
	hook := c.afterSet
	c.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (c *recordingCache) has(key SummaryKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key.String()]
	return ok
}

func (c *recordingCache) Delete(_ context.Context, key SummaryKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key.String())
	c.deletes = append(c.deletes, key.String())
	return nil
}

func (c *recordingCache) deleted(key SummaryKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range c.deletes {
		if k == key.String() {
			return true
		}
	}
	return false
}

func pageAll() repository.Page { return repository.Page{Limit: 100} }

func assignmentFilter(studentID uuid.UUID, activeOnly bool) repository.AssignmentFilter {
	return repository.AssignmentFilter{StudentID: &studentID, ActiveOnly: activeOnly}
}

func structureFilter(sessionID uuid.UUID) repository.StructureFilter {
	return repository.StructureFilter{SessionID: &sessionID}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}
