// file: internals/features/finance/fees/service/scholarship_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type ScholarshipService struct {
	*base
	recalc *Recalculator
}

type ScholarshipInput struct {
	Name        string
	Type        calc.DiscountKind
	Basis       model.ScholarshipBasis
	Value       decimal.Decimal
	ComponentID *uuid.UUID
	MaxAmount   *int64
	Description *string
}

func validBasis(b model.ScholarshipBasis) bool {
	switch b {
	case model.ScholarshipBasisMerit, model.ScholarshipBasisNeed, model.ScholarshipBasisSports,
		model.ScholarshipBasisSibling, model.ScholarshipBasisStaff, model.ScholarshipBasisOther:
		return true
	}
	return false
}

// validate: definisi diskon + nama + basis. Komponen waiver dicek terpisah (butuh store).
func (in *ScholarshipInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = calc.DiscountKind(strings.ToLower(strings.TrimSpace(string(in.Type))))
	in.Basis = model.ScholarshipBasis(strings.ToLower(strings.TrimSpace(string(in.Basis))))
	if in.Basis == "" {
		in.Basis = model.ScholarshipBasisOther
	}

	var fields []calc.FieldError
	if in.Name == "" {
		fields = append(fields, calc.FieldError{Field: "scholarship_name", Message: "is required"})
	}
	if !validBasis(in.Basis) {
		fields = append(fields, calc.FieldError{Field: "scholarship_basis", Message: "unknown scholarship basis"})
	}
	if err := calc.ValidateDefinition(in.Type, in.Value, in.MaxAmount, in.ComponentID); err != nil {
		var de calc.DefinitionErrors
		if errors.As(err, &de) {
			for _, fe := range de {
				fe.Field = "scholarship_" + fe.Field
				fields = append(fields, fe)
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	// waiver: value diabaikan
	if in.Type == calc.DiscountComponentWaiver {
		in.Value = decimal.Zero
	}
	return nil
}

func (s *ScholarshipService) checkWaiverComponent(ctx context.Context, scope helperAuth.TenantScope, in ScholarshipInput) error {
	if in.ComponentID == nil {
		return nil
	}
	if _, err := s.store.FindComponent(ctx, scope, *in.ComponentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid("scholarship_component_id", "fee component not found in this organization")
		}
		return fmt.Errorf("resolve waiver component: %w", err)
	}
	return nil
}

func (s *ScholarshipService) Create(ctx context.Context, scope helperAuth.TenantScope, in ScholarshipInput) (*model.Scholarship, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkWaiverComponent(ctx, scope, in); err != nil {
		return nil, err
	}

	m := &model.Scholarship{
		ScholarshipOrgID:       scope.OrgID,
		ScholarshipName:        in.Name,
		ScholarshipType:        in.Type,
		ScholarshipBasis:       in.Basis,
		ScholarshipValue:       in.Value,
		ScholarshipComponentID: in.ComponentID,
		ScholarshipMaxAmount:   in.MaxAmount,
		ScholarshipDescription: in.Description,
		ScholarshipIsActive:    true,
	}
	if err := s.store.CreateScholarship(ctx, m); err != nil {
		return nil, duplicateOr(err, ErrDuplicateScholarship, "create scholarship")
	}
	s.log.InfoContext(ctx, "scholarship created", "org_id", scope.OrgID, "scholarship_id", m.ScholarshipID, "type", m.ScholarshipType)
	return m, nil
}

// Update mengganti definisi lalu menghitung ulang semua struktur yang punya assignment aktifnya.
// Tiap struktur = unit of work sendiri; kegagalan satu struktur tidak membatalkan yang lain.
func (s *ScholarshipService) Update(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID, in ScholarshipInput) (*model.Scholarship, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkWaiverComponent(ctx, scope, in); err != nil {
		return nil, err
	}

	m, err := s.store.FindScholarship(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "scholarship", id)
	}
	m.ScholarshipName = in.Name
	m.ScholarshipType = in.Type
	m.ScholarshipBasis = in.Basis
	m.ScholarshipValue = in.Value
	m.ScholarshipComponentID = in.ComponentID
	m.ScholarshipMaxAmount = in.MaxAmount
	m.ScholarshipDescription = in.Description
	if err := s.store.SaveScholarship(ctx, m); err != nil {
		return nil, duplicateOr(err, ErrDuplicateScholarship, "update scholarship")
	}

	if err := s.recalculateHolders(ctx, scope, id); err != nil {
		return m, err
	}
	return m, nil
}

// recalculateHolders memakai scope org: scholarship milik org, pemegangnya bisa di branch mana saja.
func (s *ScholarshipService) recalculateHolders(ctx context.Context, scope helperAuth.TenantScope, scholarshipID uuid.UUID) error {
	orgScope := helperAuth.TenantScope{OrgID: scope.OrgID}
	pairs, err := s.store.ListStudentSessionsForScholarship(ctx, orgScope, scholarshipID)
	if err != nil {
		return fmt.Errorf("list scholarship holders: %w", err)
	}
	var errs []error
	for _, p := range pairs {
		if _, err := s.recalc.Recalculate(ctx, orgScope, p.StudentID, p.SessionID); err != nil {
			s.log.ErrorContext(ctx, "recalculate after scholarship update failed",
				"scholarship_id", scholarshipID, "student_id", p.StudentID, "session_id", p.SessionID, "error", err)
			errs = append(errs, err)
		}
	}
	s.log.InfoContext(ctx, "scholarship holders recalculated", "scholarship_id", scholarshipID, "structures", len(pairs), "failed", len(errs))
	return errors.Join(errs...)
}

// SetActive: nonaktif hanya menutup assignment BARU; assignment aktif tetap dihitung sampai di-remove.
func (s *ScholarshipService) SetActive(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID, active bool) (*model.Scholarship, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	m, err := s.store.FindScholarship(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "scholarship", id)
	}
	if m.ScholarshipIsActive == active {
		return m, nil
	}
	m.ScholarshipIsActive = active
	if err := s.store.SaveScholarship(ctx, m); err != nil {
		return nil, fmt.Errorf("toggle scholarship: %w", err)
	}
	s.log.InfoContext(ctx, "scholarship toggled", "scholarship_id", id, "is_active", active)
	return m, nil
}

func (s *ScholarshipService) Get(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.Scholarship, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	m, err := s.store.FindScholarship(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "scholarship", id)
	}
	return m, nil
}

func (s *ScholarshipService) List(ctx context.Context, scope helperAuth.TenantScope, f repository.ScholarshipFilter, p repository.Page) ([]model.Scholarship, int64, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.store.ListScholarships(ctx, scope, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list scholarships: %w", err)
	}
	return rows, total, nil
}
