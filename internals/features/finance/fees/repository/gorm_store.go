// file: internals/features/finance/fees/repository/gorm_store.go
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolku_backend/internals/features/finance/fees/model"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type gormStore struct {
	db   *gorm.DB
	inTx bool
}

// NewGormStore membungkus *gorm.DB sebagai Store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, inTx: true})
	})
}

/* =========================================================
   Helpers
========================================================= */

func (s *gormStore) q(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// mapErr: not found → ErrNotFound, unique → ErrDuplicate, sisanya apa adanya.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case isUniqueViolation(err):
		return errors.Join(ErrDuplicate, err)
	}
	return err
}

func paginate(q *gorm.DB, p Page, defaultOrder string) *gorm.DB {
	order := p.OrderBy
	if strings.TrimSpace(order) == "" {
		order = defaultOrder
	}
	q = q.Order(order)
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}

func likeQ(q string) string {
	return "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
}

// branchScoped: org wajib, branch hanya kalau scope membawa branch.
func branchScoped(q *gorm.DB, scope helperAuth.TenantScope, orgCol, branchCol string) *gorm.DB {
	q = q.Where(orgCol+" = ?", scope.OrgID)
	if scope.HasBranch() {
		q = q.Where(branchCol+" = ?", scope.BranchID)
	}
	return q
}

func orderedLineItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_item_sort_order ASC, line_item_id ASC")
}

func orderedTemplateItems(db *gorm.DB) *gorm.DB {
	return db.Order("fee_template_item_sort_order ASC, fee_template_item_id ASC")
}

/* =========================================================
   Directory
========================================================= */

func (s *gormStore) FindStudent(ctx context.Context, scope helperAuth.TenantScope, studentID uuid.UUID) (*model.Student, error) {
	var m model.Student
	q := branchScoped(s.q(ctx).Model(&model.Student{}), scope, "student_org_id", "student_branch_id")
	if err := q.Where("student_id = ?", studentID).Take(&m).Error; err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *gormStore) FindSession(ctx context.Context, scope helperAuth.TenantScope, sessionID uuid.UUID) (*model.AcademicSession, error) {
	var m model.AcademicSession
	err := s.q(ctx).
		Where("academic_session_id = ? AND academic_session_org_id = ?", sessionID, scope.OrgID).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

/* =========================================================
   Fee components
========================================================= */

func (s *gormStore) CreateComponent(ctx context.Context, m *model.FeeComponent) error {
	return mapErr(s.q(ctx).Create(m).Error)
}

func (s *gormStore) SaveComponent(ctx context.Context, m *model.FeeComponent) error {
	return mapErr(s.q(ctx).Save(m).Error)
}

func (s *gormStore) FindComponent(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.FeeComponent, error) {
	var m model.FeeComponent
	err := s.q(ctx).
		Where("fee_component_id = ? AND fee_component_org_id = ?", id, scope.OrgID).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *gormStore) FindComponents(ctx context.Context, scope helperAuth.TenantScope, ids []uuid.UUID) ([]model.FeeComponent, error) {
	out := []model.FeeComponent{}
	if len(ids) == 0 {
		return out, nil
	}
	err := s.q(ctx).
		Where("fee_component_org_id = ? AND fee_component_id IN ?", scope.OrgID, ids).
		Find(&out).Error
	return out, mapErr(err)
}

func (s *gormStore) ListComponents(ctx context.Context, scope helperAuth.TenantScope, f ComponentFilter, p Page) ([]model.FeeComponent, int64, error) {
	q := s.q(ctx).Model(&model.FeeComponent{}).Where("fee_component_org_id = ?", scope.OrgID)
	if f.Q != "" {
		q = q.Where("LOWER(fee_component_name) LIKE ?", likeQ(f.Q))
	}
	if f.Type != "" {
		q = q.Where("fee_component_type = ?", f.Type)
	}
	if f.IsActive != nil {
		q = q.Where("fee_component_is_active = ?", *f.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []model.FeeComponent{}
	if err := paginate(q, p, "fee_component_name ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

/* =========================================================
   Scholarships
========================================================= */

func (s *gormStore) CreateScholarship(ctx context.Context, m *model.Scholarship) error {
	return mapErr(s.q(ctx).Create(m).Error)
}

func (s *gormStore) SaveScholarship(ctx context.Context, m *model.Scholarship) error {
	return mapErr(s.q(ctx).Save(m).Error)
}

func (s *gormStore) FindScholarship(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.Scholarship, error) {
	var m model.Scholarship
	err := s.q(ctx).
		Where("scholarship_id = ? AND scholarship_org_id = ?", id, scope.OrgID).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *gormStore) FindScholarships(ctx context.Context, scope helperAuth.TenantScope, ids []uuid.UUID) ([]model.Scholarship, error) {
	out := []model.Scholarship{}
	if len(ids) == 0 {
		return out, nil
	}
	err := s.q(ctx).
		Where("scholarship_org_id = ? AND scholarship_id IN ?", scope.OrgID, ids).
		Find(&out).Error
	return out, mapErr(err)
}

func (s *gormStore) ListScholarships(ctx context.Context, scope helperAuth.TenantScope, f ScholarshipFilter, p Page) ([]model.Scholarship, int64, error) {
	q := s.q(ctx).Model(&model.Scholarship{}).Where("scholarship_org_id = ?", scope.OrgID)
	if f.Q != "" {
		q = q.Where("LOWER(scholarship_name) LIKE ?", likeQ(f.Q))
	}
	if f.Type != "" {
		q = q.Where("scholarship_type = ?", f.Type)
	}
	if f.Basis != "" {
		q = q.Where("scholarship_basis = ?", f.Basis)
	}
	if f.IsActive != nil {
		q = q.Where("scholarship_is_active = ?", *f.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []model.Scholarship{}
	if err := paginate(q, p, "scholarship_name ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

/* =========================================================
   Fee templates
========================================================= */

func (s *gormStore) CreateTemplate(ctx context.Context, m *model.FeeTemplate) error {
	// Items ikut ter-insert lewat association
	return mapErr(s.q(ctx).Create(m).Error)
}

func (s *gormStore) SaveTemplate(ctx context.Context, m *model.FeeTemplate) error {
	return mapErr(s.q(ctx).Omit(clause.Associations).Save(m).Error)
}

func (s *gormStore) ReplaceTemplateItems(ctx context.Context, templateID uuid.UUID, items []model.FeeTemplateItem) error {
	if err := s.q(ctx).
		Where("fee_template_item_template_id = ?", templateID).
		Delete(&model.FeeTemplateItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].FeeTemplateItemTemplateID = templateID
	}
	return mapErr(s.q(ctx).Create(&items).Error)
}

func (s *gormStore) FindTemplate(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.FeeTemplate, error) {
	var m model.FeeTemplate
	err := s.q(ctx).
		Preload("Items", orderedTemplateItems).
		Where("fee_template_id = ? AND fee_template_org_id = ?", id, scope.OrgID).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *gormStore) ListTemplates(ctx context.Context, scope helperAuth.TenantScope, f TemplateFilter, p Page) ([]model.FeeTemplate, int64, error) {
	q := s.q(ctx).Model(&model.FeeTemplate{}).Where("fee_template_org_id = ?", scope.OrgID)
	if f.BatchID != nil {
		q = q.Where("fee_template_batch_id = ?", *f.BatchID)
	}
	if f.SessionID != nil {
		q = q.Where("fee_template_session_id = ?", *f.SessionID)
	}
	if f.IsActive != nil {
		q = q.Where("fee_template_is_active = ?", *f.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []model.FeeTemplate{}
	if err := paginate(q, p, "fee_template_name ASC").
		Preload("Items", orderedTemplateItems).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

/* =========================================================
   Student fee structures
========================================================= */

func (s *gormStore) CreateStructure(ctx context.Context, m *model.StudentFeeStructure) error {
	return mapErr(s.q(ctx).Create(m).Error)
}

func (s *gormStore) FindStructure(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.StudentFeeStructure, error) {
	var m model.StudentFeeStructure
	q := branchScoped(s.q(ctx).Model(&model.StudentFeeStructure{}), scope, "fee_structure_org_id", "fee_structure_branch_id")
	err := q.Preload("LineItems", orderedLineItems).
		Where("fee_structure_id = ?", id).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *gormStore) FindStructureFor(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID, lock bool) (*model.StudentFeeStructure, error) {
	var m model.StudentFeeStructure
	err := structureForQuery(s.q(ctx), scope, studentID, sessionID, lock).
		Preload("LineItems", orderedLineItems).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// structureForQuery: filter (student, session) dalam scope; lock=true → FOR UPDATE.
func structureForQuery(db *gorm.DB, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID, lock bool) *gorm.DB {
	q := branchScoped(db.Model(&model.StudentFeeStructure{}), scope, "fee_structure_org_id", "fee_structure_branch_id").
		Where("fee_structure_student_id = ? AND fee_structure_session_id = ?", studentID, sessionID)
	if lock {
		// sqlite membuang klausa ini; postgres → row lock sampai commit
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *gormStore) StructureUpdatedAt(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) (time.Time, error) {
	var row struct {
		UpdatedAt time.Time `gorm:"column:fee_structure_updated_at"`
	}
	err := structureForQuery(s.q(ctx), scope, studentID, sessionID, false).
		Select("fee_structure_updated_at").
		Take(&row).Error
	if err != nil {
		return time.Time{}, mapErr(err)
	}
	return row.UpdatedAt, nil
}

func (s *gormStore) ListStructures(ctx context.Context, scope helperAuth.TenantScope, f StructureFilter, p Page) ([]model.StudentFeeStructure, int64, error) {
	q := branchScoped(s.q(ctx).Model(&model.StudentFeeStructure{}), scope, "fee_structure_org_id", "fee_structure_branch_id")
	if f.SessionID != nil {
		q = q.Where("fee_structure_session_id = ?", *f.SessionID)
	}
	if f.StudentID != nil {
		q = q.Where("fee_structure_student_id = ?", *f.StudentID)
	}
	if f.Source != "" {
		q = q.Where("fee_structure_source = ?", f.Source)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []model.StudentFeeStructure{}
	if err := paginate(q, p, "fee_structure_created_at DESC, fee_structure_id ASC").
		Preload("LineItems", orderedLineItems).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *gormStore) ReplaceLineItems(ctx context.Context, structureID uuid.UUID, items []model.StudentFeeLineItem) error {
	if err := s.q(ctx).
		Where("line_item_structure_id = ?", structureID).
		Delete(&model.StudentFeeLineItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].LineItemStructureID = structureID
	}
	return mapErr(s.q(ctx).Create(&items).Error)
}

// UpdateStructureSnapshot menulis kolom header (source, custom discount, nominal turunan).
// Line item tidak disentuh.
func (s *gormStore) UpdateStructureSnapshot(ctx context.Context, m *model.StudentFeeStructure) error {
	m.FeeStructureUpdatedAt = time.Now()
	res := s.q(ctx).Model(&model.StudentFeeStructure{}).
		Where("fee_structure_id = ?", m.FeeStructureID).
		Updates(map[string]any{
			"fee_structure_source":                  m.FeeStructureSource,
			"fee_structure_template_id":             m.FeeStructureTemplateID,
			"fee_structure_gross_amount":            m.FeeStructureGrossAmount,
			"fee_structure_scholarship_amount":      m.FeeStructureScholarshipAmount,
			"fee_structure_custom_discount_type":    m.FeeStructureCustomDiscountType,
			"fee_structure_custom_discount_value":   m.FeeStructureCustomDiscountValue,
			"fee_structure_custom_discount_amount":  m.FeeStructureCustomDiscountAmount,
			"fee_structure_custom_discount_remarks": m.FeeStructureCustomDiscountRemarks,
			"fee_structure_net_amount":              m.FeeStructureNetAmount,
			"fee_structure_updated_at":              m.FeeStructureUpdatedAt,
		})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

/* =========================================================
   Scholarship assignments
========================================================= */

func (s *gormStore) CreateAssignment(ctx context.Context, m *model.StudentScholarship) error {
	return mapErr(s.q(ctx).Omit(clause.Associations).Create(m).Error)
}

func (s *gormStore) FindAssignment(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.StudentScholarship, error) {
	var m model.StudentScholarship
	q := branchScoped(s.q(ctx).Model(&model.StudentScholarship{}), scope, "student_scholarship_org_id", "student_scholarship_branch_id")
	err := q.Preload("Scholarship").
		Where("student_scholarship_id = ?", id).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

func (s *gormStore) FindActiveAssignment(ctx context.Context, scope helperAuth.TenantScope, studentID, scholarshipID, sessionID uuid.UUID) (*model.StudentScholarship, error) {
	var m model.StudentScholarship
	q := branchScoped(s.q(ctx).Model(&model.StudentScholarship{}), scope, "student_scholarship_org_id", "student_scholarship_branch_id")
	err := q.Where(`student_scholarship_student_id = ?
		AND student_scholarship_scholarship_id = ?
		AND student_scholarship_session_id = ?
		AND student_scholarship_is_active = ?`, studentID, scholarshipID, sessionID, true).
		Take(&m).Error
	if err != nil {
		return nil, mapErr(err)
	}
	return &m, nil
}

// ListActiveAssignments: urutan deterministik (created_at, id) + definisi scholarship ter-preload.
func (s *gormStore) ListActiveAssignments(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) ([]model.StudentScholarship, error) {
	out := []model.StudentScholarship{}
	q := branchScoped(s.q(ctx).Model(&model.StudentScholarship{}), scope, "student_scholarship_org_id", "student_scholarship_branch_id")
	err := q.Preload("Scholarship").
		Where(`student_scholarship_student_id = ?
			AND student_scholarship_session_id = ?
			AND student_scholarship_is_active = ?`, studentID, sessionID, true).
		Order("student_scholarship_created_at ASC, student_scholarship_id ASC").
		Find(&out).Error
	return out, mapErr(err)
}

func (s *gormStore) ListAssignments(ctx context.Context, scope helperAuth.TenantScope, f AssignmentFilter, p Page) ([]model.StudentScholarship, int64, error) {
	q := branchScoped(s.q(ctx).Model(&model.StudentScholarship{}), scope, "student_scholarship_org_id", "student_scholarship_branch_id")
	if f.StudentID != nil {
		q = q.Where("student_scholarship_student_id = ?", *f.StudentID)
	}
	if f.SessionID != nil {
		q = q.Where("student_scholarship_session_id = ?", *f.SessionID)
	}
	if f.ScholarshipID != nil {
		q = q.Where("student_scholarship_scholarship_id = ?", *f.ScholarshipID)
	}
	if f.ActiveOnly {
		q = q.Where("student_scholarship_is_active = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	out := []model.StudentScholarship{}
	if err := paginate(q, p, "student_scholarship_created_at ASC, student_scholarship_id ASC").
		Preload("Scholarship").
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *gormStore) UpdateAssignmentDiscount(ctx context.Context, id uuid.UUID, amount int64) error {
	return s.q(ctx).Model(&model.StudentScholarship{}).
		Where("student_scholarship_id = ?", id).
		Updates(map[string]any{
			"student_scholarship_discount_amount": amount,
			"student_scholarship_updated_at":      time.Now(),
		}).Error
}

func (s *gormStore) DeactivateAssignment(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := s.q(ctx).Model(&model.StudentScholarship{}).
		Where("student_scholarship_id = ? AND student_scholarship_is_active = ?", id, true).
		Updates(map[string]any{
			"student_scholarship_is_active":  false,
			"student_scholarship_removed_at": at,
			"student_scholarship_updated_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) ListStudentSessionsForScholarship(ctx context.Context, scope helperAuth.TenantScope, scholarshipID uuid.UUID) ([]StudentSession, error) {
	type row struct {
		StudentID uuid.UUID `gorm:"column:student_id"`
		SessionID uuid.UUID `gorm:"column:session_id"`
	}
	var rows []row
	q := branchScoped(s.q(ctx).Model(&model.StudentScholarship{}), scope, "student_scholarship_org_id", "student_scholarship_branch_id")
	err := q.Distinct("student_scholarship_student_id AS student_id", "student_scholarship_session_id AS session_id").
		Where("student_scholarship_scholarship_id = ? AND student_scholarship_is_active = ?", scholarshipID, true).
		Order("student_id ASC, session_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]StudentSession, 0, len(rows))
	for _, r := range rows {
		out = append(out, StudentSession{StudentID: r.StudentID, SessionID: r.SessionID})
	}
	return out, nil
}

/* =========================================================
   Installments
========================================================= */

func (s *gormStore) ListInstallments(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID) ([]model.FeeInstallment, error) {
	out := []model.FeeInstallment{}
	err := s.q(ctx).
		Where("fee_installment_org_id = ? AND fee_installment_structure_id = ?", scope.OrgID, structureID).
		Order("fee_installment_sequence ASC").
		Find(&out).Error
	return out, mapErr(err)
}
