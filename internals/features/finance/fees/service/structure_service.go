// file: internals/features/finance/fees/service/structure_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type StructureService struct {
	*base
	installments InstallmentReader
}

type LineItemInput struct {
	FeeComponentID uuid.UUID
	Amount         int64  // original
	AdjustedAmount *int64 // nil → sama dengan Amount
	Waived         bool
	WaiverReason   *string
}

type CustomDiscountInput struct {
	Type    calc.DiscountKind
	Value   decimal.Decimal
	Remarks *string
}

type CreateStructureInput struct {
	StudentID      uuid.UUID
	SessionID      uuid.UUID
	Source         model.FeeStructureSource // kosong → custom
	TemplateID     *uuid.UUID
	LineItems      []LineItemInput
	CustomDiscount *CustomDiscountInput
}

// StructureDetail = struktur + nama/tipe komponen terkini + assignment + cicilan.
type StructureDetail struct {
	Structure    *model.StudentFeeStructure
	Components   map[uuid.UUID]model.FeeComponent
	Assignments  []model.StudentScholarship
	Installments []model.FeeInstallment
}

/* =========================================================
   Validasi & builder
========================================================= */

func validateLineItems(items []LineItemInput) error {
	var fields []calc.FieldError
	if len(items) == 0 {
		fields = append(fields, calc.FieldError{Field: "line_items", Message: "at least one line item is required"})
	}
	seen := map[uuid.UUID]bool{}
	for i, it := range items {
		prefix := fmt.Sprintf("line_items[%d].", i)
		if it.FeeComponentID == uuid.Nil {
			fields = append(fields, calc.FieldError{Field: prefix + "fee_component_id", Message: "is required"})
		} else if seen[it.FeeComponentID] {
			fields = append(fields, calc.FieldError{Field: prefix + "fee_component_id", Message: "duplicate component in structure"})
		}
		seen[it.FeeComponentID] = true
		fields = append(fields, amountErrors(prefix+"amount", it.Amount)...)
		if it.AdjustedAmount != nil {
			fields = append(fields, amountErrors(prefix+"adjusted_amount", *it.AdjustedAmount)...)
		}
	}
	if len(fields) == 0 {
		// per item sudah <= MaxAmount, jadi penjumlahan berhenti sebelum overflow
		var gross int64
		for _, it := range items {
			gross += effectiveAmount(it)
			if gross > calc.MaxAmount {
				fields = append(fields, calc.FieldError{Field: "line_items", Message: fmt.Sprintf("total must be <= %d", calc.MaxAmount)})
				break
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func amountErrors(field string, v int64) []calc.FieldError {
	switch {
	case v < 0:
		return []calc.FieldError{{Field: field, Message: "must be >= 0"}}
	case v > calc.MaxAmount:
		return []calc.FieldError{{Field: field, Message: fmt.Sprintf("must be <= %d", calc.MaxAmount)}}
	}
	return nil
}

func effectiveAmount(it LineItemInput) int64 {
	if it.Waived {
		return 0
	}
	if it.AdjustedAmount != nil {
		return *it.AdjustedAmount
	}
	return it.Amount
}

func validateCustomDiscount(in *CustomDiscountInput) error {
	if in == nil {
		return nil
	}
	return fromDefinition(calc.ValidateCustomDefinition(in.Type, in.Value))
}

type componentSnapshot struct {
	Name string                 `json:"name"`
	Type model.FeeComponentType `json:"type"`
}

func snapshotOf(c model.FeeComponent) datatypes.JSON {
	raw, err := sonic.Marshal(componentSnapshot{Name: c.FeeComponentName, Type: c.FeeComponentType})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func buildLineItems(items []LineItemInput, comps map[uuid.UUID]model.FeeComponent) []model.StudentFeeLineItem {
	out := make([]model.StudentFeeLineItem, 0, len(items))
	for i, it := range items {
		adjusted := effectiveAmount(it)
		out = append(out, model.StudentFeeLineItem{
			LineItemFeeComponentID:    it.FeeComponentID,
			LineItemOriginalAmount:    it.Amount,
			LineItemAdjustedAmount:    adjusted,
			LineItemWaived:            it.Waived,
			LineItemWaiverReason:      it.WaiverReason,
			LineItemComponentSnapshot: snapshotOf(comps[it.FeeComponentID]),
			LineItemSortOrder:         i + 1,
		})
	}
	return out
}

// applyCustomDiscount menulis definisi custom (nil = clear) dan menghitung amount terhadap gross saat ini.
func applyCustomDiscount(st *model.StudentFeeStructure, in *CustomDiscountInput) {
	if in == nil {
		st.FeeStructureCustomDiscountType = nil
		st.FeeStructureCustomDiscountValue = decimal.NullDecimal{}
		st.FeeStructureCustomDiscountRemarks = nil
		st.FeeStructureCustomDiscountAmount = 0
		return
	}
	kind := in.Type
	st.FeeStructureCustomDiscountType = &kind
	st.FeeStructureCustomDiscountValue = decimal.NewNullDecimal(in.Value)
	st.FeeStructureCustomDiscountRemarks = in.Remarks
	refreshCustomAmount(st)
}

// refreshCustomAmount: percentage mengikuti gross, fixed di-cap ulang ke gross.
func refreshCustomAmount(st *model.StudentFeeStructure) {
	if !st.HasCustomDiscount() {
		st.FeeStructureCustomDiscountAmount = 0
		return
	}
	st.FeeStructureCustomDiscountAmount = calc.ComputeCustomDiscount(
		*st.FeeStructureCustomDiscountType,
		st.FeeStructureCustomDiscountValue.Decimal,
		st.FeeStructureGrossAmount,
	)
}

/* =========================================================
   Create
========================================================= */

func (s *StructureService) Create(ctx context.Context, scope helperAuth.TenantScope, in CreateStructureInput) (*model.StudentFeeStructure, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = model.FeeStructureSourceCustom
	}
	switch in.Source {
	case model.FeeStructureSourceCustom:
	case model.FeeStructureSourceTemplate:
		if in.TemplateID == nil || *in.TemplateID == uuid.Nil {
			return nil, invalid("template_id", "required when source is template")
		}
	default:
		return nil, invalid("source", "must be template or custom")
	}
	if err := validateLineItems(in.LineItems); err != nil {
		return nil, err
	}
	if err := validateCustomDiscount(in.CustomDiscount); err != nil {
		return nil, err
	}

	var out *model.StudentFeeStructure
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if in.TemplateID != nil {
			if _, err := tx.FindTemplate(ctx, scope, *in.TemplateID); err != nil {
				return notFoundOr(err, "fee template", *in.TemplateID)
			}
		}
		st, err := s.createTx(ctx, tx, scope, in)
		out = st
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, scope, out.FeeStructureStudentID, out.FeeStructureSessionID)
	s.log.InfoContext(ctx, "fee structure created",
		"structure_id", out.FeeStructureID, "student_id", out.FeeStructureStudentID,
		"session_id", out.FeeStructureSessionID, "source", out.FeeStructureSource,
		"gross_amount", out.FeeStructureGrossAmount, "net_amount", out.FeeStructureNetAmount)
	return out, nil
}

// CreateFromTemplate menyalin item template menjadi line item (original = adjusted = amount template).
func (s *StructureService) CreateFromTemplate(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID, templateID uuid.UUID, custom *CustomDiscountInput) (*model.StudentFeeStructure, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := validateCustomDiscount(custom); err != nil {
		return nil, err
	}

	var out *model.StudentFeeStructure
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		tpl, err := tx.FindTemplate(ctx, scope, templateID)
		if err != nil {
			return notFoundOr(err, "fee template", templateID)
		}
		if !tpl.FeeTemplateIsActive {
			return invalid("template_id", "fee template is inactive")
		}
		if tpl.FeeTemplateSessionID != sessionID {
			return invalid("template_id", "fee template belongs to another academic session")
		}
		if len(tpl.Items) == 0 {
			return invalid("template_id", "fee template has no items")
		}

		items := make([]LineItemInput, 0, len(tpl.Items))
		for _, it := range tpl.Items {
			items = append(items, LineItemInput{FeeComponentID: it.FeeTemplateItemFeeComponentID, Amount: it.FeeTemplateItemAmount})
		}
		tid := tpl.FeeTemplateID
		st, err := s.createTx(ctx, tx, scope, CreateStructureInput{
			StudentID:      studentID,
			SessionID:      sessionID,
			Source:         model.FeeStructureSourceTemplate,
			TemplateID:     &tid,
			LineItems:      items,
			CustomDiscount: custom,
		})
		out = st
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, scope, studentID, sessionID)
	s.log.InfoContext(ctx, "fee structure created from template",
		"structure_id", out.FeeStructureID, "template_id", templateID,
		"gross_amount", out.FeeStructureGrossAmount, "net_amount", out.FeeStructureNetAmount)
	return out, nil
}

func (s *StructureService) createTx(ctx context.Context, tx repository.Store, scope helperAuth.TenantScope, in CreateStructureInput) (*model.StudentFeeStructure, error) {
	stu, err := ensureStudentAndSession(ctx, tx, scope, in.StudentID, in.SessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(in.LineItems))
	for _, it := range in.LineItems {
		ids = append(ids, it.FeeComponentID)
	}
	comps, err := resolveComponents(ctx, tx, scope, ids, "line_items", true)
	if err != nil {
		return nil, err
	}

	st := &model.StudentFeeStructure{
		FeeStructureOrgID:      scope.OrgID,
		FeeStructureBranchID:   stu.StudentBranchID,
		FeeStructureStudentID:  in.StudentID,
		FeeStructureSessionID:  in.SessionID,
		FeeStructureSource:     in.Source,
		FeeStructureTemplateID: in.TemplateID,
		LineItems:              buildLineItems(in.LineItems, comps),
	}
	st.FeeStructureGrossAmount = st.SumLineItems()
	applyCustomDiscount(st, in.CustomDiscount)
	st.FeeStructureNetAmount = calc.NetAmount(st.FeeStructureGrossAmount, 0, st.FeeStructureCustomDiscountAmount)

	if err := tx.CreateStructure(ctx, st); err != nil {
		return nil, duplicateOr(err, ErrDuplicateStructure, "create fee structure")
	}

	// assignment yang dibuat sebelum struktur ada ikut dihitung di sini
	out, err := recalculateTx(ctx, tx, scope, in.StudentID, in.SessionID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &ConsistencyError{StructureID: st.FeeStructureID, Err: errors.New("structure vanished right after insert")}
	}
	return out, nil
}

/* =========================================================
   Mutasi
========================================================= */

// UpdateLineItems mengganti semua line item → source = custom, custom amount dihitung ulang, lalu recalculation.
func (s *StructureService) UpdateLineItems(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID, items []LineItemInput) (*model.StudentFeeStructure, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := validateLineItems(items); err != nil {
		return nil, err
	}

	var out *model.StudentFeeStructure
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		st, err := s.lockByID(ctx, tx, scope, structureID)
		if err != nil {
			return err
		}

		ids := make([]uuid.UUID, 0, len(items))
		for _, it := range items {
			ids = append(ids, it.FeeComponentID)
		}
		comps, err := resolveComponents(ctx, tx, scope, ids, "line_items", false)
		if err != nil {
			return err
		}
		// komponen nonaktif hanya boleh kalau sudah ada di struktur sebelumnya
		existing := map[uuid.UUID]bool{}
		for _, li := range st.LineItems {
			existing[li.LineItemFeeComponentID] = true
		}
		for _, id := range ids {
			if c := comps[id]; !c.FeeComponentIsActive && !existing[id] {
				return invalid("line_items", fmt.Sprintf("fee component %q is inactive", c.FeeComponentName))
			}
		}

		newItems := buildLineItems(items, comps)
		if err := tx.ReplaceLineItems(ctx, st.FeeStructureID, newItems); err != nil {
			return fmt.Errorf("replace line items: %w", err)
		}
		st.LineItems = newItems
		st.FeeStructureSource = model.FeeStructureSourceCustom
		st.FeeStructureGrossAmount = st.SumLineItems()
		refreshCustomAmount(st)
		st.FeeStructureNetAmount = calc.NetAmount(st.FeeStructureGrossAmount, st.FeeStructureScholarshipAmount, st.FeeStructureCustomDiscountAmount)
		if err := tx.UpdateStructureSnapshot(ctx, st); err != nil {
			return fmt.Errorf("update fee structure: %w", err)
		}

		out, err = recalculateTx(ctx, tx, scope, st.FeeStructureStudentID, st.FeeStructureSessionID)
		if err == nil && out == nil {
			err = &NotFoundError{Entity: "fee structure", ID: structureID}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, scope, out.FeeStructureStudentID, out.FeeStructureSessionID)
	s.log.InfoContext(ctx, "fee structure line items replaced",
		"structure_id", structureID, "items", len(items),
		"gross_amount", out.FeeStructureGrossAmount, "net_amount", out.FeeStructureNetAmount)
	return out, nil
}

// SetCustomDiscount: in == nil → clear (type/value null, amount 0).
func (s *StructureService) SetCustomDiscount(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID, in *CustomDiscountInput) (*model.StudentFeeStructure, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := validateCustomDiscount(in); err != nil {
		return nil, err
	}

	var out *model.StudentFeeStructure
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		st, err := s.lockByID(ctx, tx, scope, structureID)
		if err != nil {
			return err
		}
		applyCustomDiscount(st, in)
		st.FeeStructureNetAmount = calc.NetAmount(st.FeeStructureGrossAmount, st.FeeStructureScholarshipAmount, st.FeeStructureCustomDiscountAmount)
		if err := tx.UpdateStructureSnapshot(ctx, st); err != nil {
			return fmt.Errorf("update custom discount: %w", err)
		}
		out, err = recalculateTx(ctx, tx, scope, st.FeeStructureStudentID, st.FeeStructureSessionID)
		if err == nil && out == nil {
			err = &NotFoundError{Entity: "fee structure", ID: structureID}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, scope, out.FeeStructureStudentID, out.FeeStructureSessionID)
	s.log.InfoContext(ctx, "fee structure custom discount changed",
		"structure_id", structureID, "cleared", in == nil,
		"custom_discount_amount", out.FeeStructureCustomDiscountAmount, "net_amount", out.FeeStructureNetAmount)
	return out, nil
}

func (s *StructureService) ClearCustomDiscount(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID) (*model.StudentFeeStructure, error) {
	return s.SetCustomDiscount(ctx, scope, structureID, nil)
}

// lockByID: resolve (student, session) dari ID lalu ambil ulang dengan FOR UPDATE.
func (s *StructureService) lockByID(ctx context.Context, tx repository.Store, scope helperAuth.TenantScope, structureID uuid.UUID) (*model.StudentFeeStructure, error) {
	head, err := tx.FindStructure(ctx, scope, structureID)
	if err != nil {
		return nil, notFoundOr(err, "fee structure", structureID)
	}
	st, err := tx.FindStructureFor(ctx, scope, head.FeeStructureStudentID, head.FeeStructureSessionID, true)
	if err != nil {
		return nil, notFoundOr(err, "fee structure", structureID)
	}
	return st, nil
}

/* =========================================================
   Read
========================================================= */

func (s *StructureService) Get(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID) (*StructureDetail, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	st, err := s.store.FindStructure(ctx, scope, structureID)
	if err != nil {
		return nil, notFoundOr(err, "fee structure", structureID)
	}
	return s.detailOf(ctx, scope, st)
}

// GetFor = detail berdasarkan (student, session); dipakai self view siswa.
func (s *StructureService) GetFor(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) (*StructureDetail, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	st, err := s.store.FindStructureFor(ctx, scope, studentID, sessionID, false)
	if err != nil {
		return nil, notFoundOr(err, "fee structure", uuid.Nil)
	}
	return s.detailOf(ctx, scope, st)
}

func (s *StructureService) detailOf(ctx context.Context, scope helperAuth.TenantScope, st *model.StudentFeeStructure) (*StructureDetail, error) {
	ids := make([]uuid.UUID, 0, len(st.LineItems))
	for _, li := range st.LineItems {
		ids = append(ids, li.LineItemFeeComponentID)
	}
	rows, err := s.store.FindComponents(ctx, scope, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve fee components: %w", err)
	}
	comps := make(map[uuid.UUID]model.FeeComponent, len(rows))
	for _, c := range rows {
		comps[c.FeeComponentID] = c
	}

	assignments, err := s.store.ListActiveAssignments(ctx, scope, st.FeeStructureStudentID, st.FeeStructureSessionID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	installments, err := s.installments.ListInstallments(ctx, scope, st.FeeStructureID)
	if err != nil {
		return nil, fmt.Errorf("load installments: %w", err)
	}
	return &StructureDetail{
		Structure:    st,
		Components:   comps,
		Assignments:  assignments,
		Installments: installments,
	}, nil
}

func (s *StructureService) List(ctx context.Context, scope helperAuth.TenantScope, f repository.StructureFilter, p repository.Page) ([]model.StudentFeeStructure, int64, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.store.ListStructures(ctx, scope, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list fee structures: %w", err)
	}
	return rows, total, nil
}

// Summary membaca ringkasan lewat cache; miss → DB lalu isi cache.
func (s *StructureService) Summary(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) (*StructureSummary, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	key := SummaryKey{OrgID: scope.OrgID, StudentID: studentID, SessionID: sessionID}

	cached, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		// key cuma per org; admin branch tetap tidak boleh lihat branch lain
		if scope.HasBranch() && cached.BranchID != scope.BranchID {
			return nil, &NotFoundError{Entity: "fee structure"}
		}
		return cached, nil
	case !errors.Is(err, ErrCacheMiss):
		s.log.WarnContext(ctx, "summary cache read failed", "key", key.String(), "error", err)
	}

	st, err := s.store.FindStructureFor(ctx, scope, studentID, sessionID, false)
	if err != nil {
		return nil, notFoundOr(err, "fee structure", uuid.Nil)
	}
	sum := SummaryOf(st)
	if err := s.cache.Set(ctx, key, sum); err != nil {
		s.log.WarnContext(ctx, "summary cache write failed", "key", key.String(), "error", err)
		return &sum, nil
	}
	// writer yang commit + invalidate di antara baca dan Set meninggalkan entry basi;
	// cek ulang versinya, kalau sudah berubah entry dibuang.
	at, err := s.store.StructureUpdatedAt(ctx, scope, studentID, sessionID)
	if err != nil || !at.Equal(sum.UpdatedAt) {
		s.invalidate(ctx, scope, studentID, sessionID)
	}
	return &sum, nil
}
