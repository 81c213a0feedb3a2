// file: internals/features/finance/fees/service/recalculate.go
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

// Recalculator = satu-satunya penulis nilai turunan:
// student_scholarship.discount_amount, structure.scholarship_amount, structure.net_amount.
type Recalculator struct {
	*base
}

// Recalculate sebagai unit of work sendiri (aksi admin).
// nil, nil → belum ada struktur untuk (student, session).
func (r *Recalculator) Recalculate(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) (*model.StudentFeeStructure, error) {
	if err := r.requireScope(scope); err != nil {
		return nil, err
	}
	var out *model.StudentFeeStructure
	err := r.store.Transaction(ctx, func(tx repository.Store) error {
		st, err := recalculateTx(ctx, tx, scope, studentID, sessionID)
		out = st
		return err
	})
	if err != nil {
		return nil, err
	}
	if out != nil {
		r.invalidate(ctx, scope, studentID, sessionID)
		r.log.InfoContext(ctx, "fee structure recalculated",
			"structure_id", out.FeeStructureID,
			"scholarship_amount", out.FeeStructureScholarshipAmount,
			"net_amount", out.FeeStructureNetAmount)
	}
	return out, nil
}

// RecalculateStructure = Recalculate berdasarkan ID struktur.
func (r *Recalculator) RecalculateStructure(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID) (*model.StudentFeeStructure, error) {
	if err := r.requireScope(scope); err != nil {
		return nil, err
	}
	st, err := r.store.FindStructure(ctx, scope, structureID)
	if err != nil {
		return nil, notFoundOr(err, "fee structure", structureID)
	}
	out, err := r.Recalculate(ctx, scope, st.FeeStructureStudentID, st.FeeStructureSessionID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		// dihapus di antara dua query
		return nil, &NotFoundError{Entity: "fee structure", ID: structureID}
	}
	return out, nil
}

// recalculateTx berjalan di dalam unit of work pemanggil.
// Tanpa struktur: discount_amount assignment aktif kembali ke placeholder.
//  1. lock struktur (FOR UPDATE)
//  2. assignment aktif, urut (created_at, id)
//  3. hitung ulang tiap discount_amount terhadap gross saat ini
//  4. scholarship = Σ, net = max(0, gross − scholarship − custom)
//  5. cek invariant → simpan
func recalculateTx(ctx context.Context, tx repository.Store, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) (*model.StudentFeeStructure, error) {
	st, err := tx.FindStructureFor(ctx, scope, studentID, sessionID, true)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, refreshPlaceholdersTx(ctx, tx, scope, studentID, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock fee structure: %w", err)
	}

	assignments, err := tx.ListActiveAssignments(ctx, scope, studentID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load active assignments: %w", err)
	}

	gross := st.FeeStructureGrossAmount
	var scholarshipTotal int64
	for i := range assignments {
		a := &assignments[i]
		sch := a.Scholarship
		if sch == nil {
			return nil, &ConsistencyError{
				StructureID: st.FeeStructureID,
				Err:         fmt.Errorf("assignment %s references missing scholarship %s", a.StudentScholarshipID, a.StudentScholarshipScholarshipID),
			}
		}

		var componentAmount *int64
		if sch.ScholarshipComponentID != nil {
			componentAmount = st.ComponentAmount(*sch.ScholarshipComponentID)
		}
		amount := calc.ComputeDiscount(sch.DiscountInput(gross, componentAmount))

		if amount != a.StudentScholarshipDiscountAmount {
			if err := tx.UpdateAssignmentDiscount(ctx, a.StudentScholarshipID, amount); err != nil {
				return nil, fmt.Errorf("update assignment discount: %w", err)
			}
			a.StudentScholarshipDiscountAmount = amount
		}
		scholarshipTotal += amount
	}

	st.FeeStructureScholarshipAmount = scholarshipTotal
	st.FeeStructureNetAmount = calc.NetAmount(gross, scholarshipTotal, st.FeeStructureCustomDiscountAmount)

	if err := st.CheckInvariants(); err != nil {
		return nil, &ConsistencyError{StructureID: st.FeeStructureID, Err: err}
	}
	if err := tx.UpdateStructureSnapshot(ctx, st); err != nil {
		return nil, fmt.Errorf("persist fee structure snapshot: %w", err)
	}
	return st, nil
}

func refreshPlaceholdersTx(ctx context.Context, tx repository.Store, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) error {
	assignments, err := tx.ListActiveAssignments(ctx, scope, studentID, sessionID)
	if err != nil {
		return fmt.Errorf("load active assignments: %w", err)
	}
	for _, a := range assignments {
		if a.Scholarship == nil {
			continue
		}
		amount := calc.PlaceholderDiscount(a.Scholarship.ScholarshipType, a.Scholarship.ScholarshipValue)
		if amount == a.StudentScholarshipDiscountAmount {
			continue
		}
		if err := tx.UpdateAssignmentDiscount(ctx, a.StudentScholarshipID, amount); err != nil {
			return fmt.Errorf("update placeholder discount: %w", err)
		}
	}
	return nil
}
