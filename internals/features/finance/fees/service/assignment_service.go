// file: internals/features/finance/fees/service/assignment_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// AssignmentService = ledger scholarship per siswa per session.
// discount_amount di sini hanya placeholder; nilai final ditulis Recalculator.
type AssignmentService struct {
	*base
}

type AssignInput struct {
	StudentID     uuid.UUID
	ScholarshipID uuid.UUID
	SessionID     uuid.UUID
	ApprovedByID  *uuid.UUID
	Remarks       *string
}

func (s *AssignmentService) Assign(ctx context.Context, scope helperAuth.TenantScope, in AssignInput) (*model.StudentScholarship, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if in.ScholarshipID == uuid.Nil {
		return nil, invalid("scholarship_id", "is required")
	}

	var out *model.StudentScholarship
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		stu, err := ensureStudentAndSession(ctx, tx, scope, in.StudentID, in.SessionID)
		if err != nil {
			return err
		}
		sch, err := tx.FindScholarship(ctx, scope, in.ScholarshipID)
		if err != nil {
			return notFoundOr(err, "scholarship", in.ScholarshipID)
		}
		if !sch.ScholarshipIsActive {
			return invalid("scholarship_id", "scholarship is inactive")
		}

		_, err = tx.FindActiveAssignment(ctx, scope, in.StudentID, in.ScholarshipID, in.SessionID)
		switch {
		case err == nil:
			return &DuplicateError{Reason: ErrDuplicateAssignment}
		case !errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("check active assignment: %w", err)
		}

		m := &model.StudentScholarship{
			StudentScholarshipOrgID:          scope.OrgID,
			StudentScholarshipBranchID:       stu.StudentBranchID,
			StudentScholarshipStudentID:      in.StudentID,
			StudentScholarshipScholarshipID:  in.ScholarshipID,
			StudentScholarshipSessionID:      in.SessionID,
			StudentScholarshipDiscountAmount: calc.PlaceholderDiscount(sch.ScholarshipType, sch.ScholarshipValue),
			StudentScholarshipApprovedByID:   in.ApprovedByID,
			StudentScholarshipRemarks:        in.Remarks,
			StudentScholarshipIsActive:       true,
		}
		if err := tx.CreateAssignment(ctx, m); err != nil {
			// race dengan assign paralel → partial unique index
			return duplicateOr(err, ErrDuplicateAssignment, "create scholarship assignment")
		}

		if _, err := recalculateTx(ctx, tx, scope, in.StudentID, in.SessionID); err != nil {
			return err
		}

		fresh, err := tx.FindAssignment(ctx, scope, m.StudentScholarshipID)
		if err != nil {
			return fmt.Errorf("reload assignment: %w", err)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, scope, in.StudentID, in.SessionID)
	s.log.InfoContext(ctx, "scholarship assigned",
		"student_scholarship_id", out.StudentScholarshipID, "student_id", in.StudentID,
		"scholarship_id", in.ScholarshipID, "session_id", in.SessionID,
		"discount_amount", out.StudentScholarshipDiscountAmount)
	return out, nil
}

// Remove = soft remove (is_active=false, removed_at) + recalculation struktur pemilik.
// Sudah di-remove / tenant lain / tidak ada → NotFoundError.
func (s *AssignmentService) Remove(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.StudentScholarship, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}

	var out *model.StudentScholarship
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		m, err := tx.FindAssignment(ctx, scope, id)
		if err != nil {
			return notFoundOr(err, "scholarship assignment", id)
		}
		if !m.StudentScholarshipIsActive {
			return &NotFoundError{Entity: "scholarship assignment", ID: id}
		}

		now := s.now()
		if err := tx.DeactivateAssignment(ctx, id, now); err != nil {
			return notFoundOr(err, "scholarship assignment", id)
		}
		m.StudentScholarshipIsActive = false
		m.StudentScholarshipRemovedAt = &now

		if _, err := recalculateTx(ctx, tx, scope, m.StudentScholarshipStudentID, m.StudentScholarshipSessionID); err != nil {
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, scope, out.StudentScholarshipStudentID, out.StudentScholarshipSessionID)
	s.log.InfoContext(ctx, "scholarship assignment removed",
		"student_scholarship_id", id, "student_id", out.StudentScholarshipStudentID,
		"session_id", out.StudentScholarshipSessionID)
	return out, nil
}

func (s *AssignmentService) Get(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.StudentScholarship, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	m, err := s.store.FindAssignment(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "scholarship assignment", id)
	}
	return m, nil
}

func (s *AssignmentService) List(ctx context.Context, scope helperAuth.TenantScope, f repository.AssignmentFilter, p repository.Page) ([]model.StudentScholarship, int64, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.store.ListAssignments(ctx, scope, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list scholarship assignments: %w", err)
	}
	return rows, total, nil
}
