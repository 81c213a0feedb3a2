// file: internals/features/finance/fees/service/service.go
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// InstallmentReader = port baca cicilan (ditulis generator cicilan di luar engine).
type InstallmentReader interface {
	ListInstallments(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID) ([]model.FeeInstallment, error)
}

type Options struct {
	Store        repository.Store
	Cache        SummaryCache      // nil → no-op
	Installments InstallmentReader // nil → Store
	Logger       *slog.Logger      // nil → slog.Default()
	Now          func() time.Time  // nil → time.Now
}

// Services = semua service engine fee, berbagi Store / cache / logger yang sama.
type Services struct {
	Components   *ComponentService
	Scholarships *ScholarshipService
	Templates    *TemplateService
	Structures   *StructureService
	Assignments  *AssignmentService
	Recalculator *Recalculator
}

func New(opts Options) *Services {
	if opts.Cache == nil {
		opts.Cache = NewNoopSummaryCache()
	}
	if opts.Installments == nil {
		opts.Installments = opts.Store
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	b := &base{
		store: opts.Store,
		cache: opts.Cache,
		log:   opts.Logger.With("module", "fees"),
		now:   opts.Now,
	}
	rc := &Recalculator{base: b}

	return &Services{
		Components:   &ComponentService{base: b},
		Scholarships: &ScholarshipService{base: b, recalc: rc},
		Templates:    &TemplateService{base: b},
		Structures:   &StructureService{base: b, installments: opts.Installments},
		Assignments:  &AssignmentService{base: b},
		Recalculator: rc,
	}
}

type base struct {
	store repository.Store
	cache SummaryCache
	log   *slog.Logger
	now   func() time.Time
}

// invalidate dipanggil SETELAH commit. Gagal → cukup di-log.
func (b *base) invalidate(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) {
	key := SummaryKey{OrgID: scope.OrgID, StudentID: studentID, SessionID: sessionID}
	if err := b.cache.Delete(ctx, key); err != nil {
		b.log.WarnContext(ctx, "summary cache invalidate failed", "key", key.String(), "error", err)
	}
}

func (b *base) requireScope(scope helperAuth.TenantScope) error {
	if !scope.Valid() {
		return invalid("org_id", "tenant scope is required")
	}
	return nil
}

// ensureStudentAndSession: siswa di tenant + session di org.
func ensureStudentAndSession(ctx context.Context, st repository.Store, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) (*model.Student, error) {
	stu, err := st.FindStudent(ctx, scope, studentID)
	if err != nil {
		return nil, notFoundOr(err, "student", studentID)
	}
	if _, err := st.FindSession(ctx, scope, sessionID); err != nil {
		return nil, notFoundOr(err, "academic session", sessionID)
	}
	return stu, nil
}
