// file: internals/features/finance/fees/repository/store.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/model"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

var (
	// ErrNotFound: baris tidak ada ATAU milik tenant lain (sengaja tidak dibedakan).
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate: unique constraint dilanggar.
	ErrDuplicate = errors.New("duplicate record")
)

// Page = limit/offset + ORDER BY yang sudah di-whitelist oleh pemanggil.
type Page struct {
	Limit   int
	Offset  int
	OrderBy string
}

type ComponentFilter struct {
	Q        string
	Type     string
	IsActive *bool
}

type ScholarshipFilter struct {
	Q        string
	Type     string
	Basis    string
	IsActive *bool
}

type TemplateFilter struct {
	BatchID   *uuid.UUID
	SessionID *uuid.UUID
	IsActive  *bool
}

type StructureFilter struct {
	SessionID *uuid.UUID
	StudentID *uuid.UUID
	Source    string
}

type AssignmentFilter struct {
	StudentID     *uuid.UUID
	SessionID     *uuid.UUID
	ScholarshipID *uuid.UUID
	ActiveOnly    bool
}

// StudentSession = pasangan kunci struktur (untuk recalculation massal).
type StudentSession struct {
	StudentID uuid.UUID
	SessionID uuid.UUID
}

// Store = repository generik engine fee. Semua method memfilter tenant.
//
// Transaction menjalankan fn dalam satu unit of work: commit semua atau tidak sama sekali.
// Store yang diterima fn terikat ke transaksi itu; Transaction bersarang memakai transaksi yang sama.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Directory (read-only)
	FindStudent(ctx context.Context, scope helperAuth.TenantScope, studentID uuid.UUID) (*model.Student, error)
	FindSession(ctx context.Context, scope helperAuth.TenantScope, sessionID uuid.UUID) (*model.AcademicSession, error)

	// Fee components
	CreateComponent(ctx context.Context, m *model.FeeComponent) error
	SaveComponent(ctx context.Context, m *model.FeeComponent) error
	FindComponent(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.FeeComponent, error)
	FindComponents(ctx context.Context, scope helperAuth.TenantScope, ids []uuid.UUID) ([]model.FeeComponent, error)
	ListComponents(ctx context.Context, scope helperAuth.TenantScope, f ComponentFilter, p Page) ([]model.FeeComponent, int64, error)

	// Scholarships
	CreateScholarship(ctx context.Context, m *model.Scholarship) error
	SaveScholarship(ctx context.Context, m *model.Scholarship) error
	FindScholarship(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.Scholarship, error)
	FindScholarships(ctx context.Context, scope helperAuth.TenantScope, ids []uuid.UUID) ([]model.Scholarship, error)
	ListScholarships(ctx context.Context, scope helperAuth.TenantScope, f ScholarshipFilter, p Page) ([]model.Scholarship, int64, error)

	// Fee templates
	CreateTemplate(ctx context.Context, m *model.FeeTemplate) error
	SaveTemplate(ctx context.Context, m *model.FeeTemplate) error
	ReplaceTemplateItems(ctx context.Context, templateID uuid.UUID, items []model.FeeTemplateItem) error
	FindTemplate(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.FeeTemplate, error)
	ListTemplates(ctx context.Context, scope helperAuth.TenantScope, f TemplateFilter, p Page) ([]model.FeeTemplate, int64, error)

	// Student fee structures
	CreateStructure(ctx context.Context, m *model.StudentFeeStructure) error
	FindStructure(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.StudentFeeStructure, error)
	// FindStructureFor mengambil struktur (student, session); lock=true → SELECT … FOR UPDATE.
	FindStructureFor(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID, lock bool) (*model.StudentFeeStructure, error)
	// StructureUpdatedAt = versi struktur (updated_at) tanpa memuat line item.
	StructureUpdatedAt(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) (time.Time, error)
	ListStructures(ctx context.Context, scope helperAuth.TenantScope, f StructureFilter, p Page) ([]model.StudentFeeStructure, int64, error)
	ReplaceLineItems(ctx context.Context, structureID uuid.UUID, items []model.StudentFeeLineItem) error
	UpdateStructureSnapshot(ctx context.Context, m *model.StudentFeeStructure) error

	// Scholarship assignments
	CreateAssignment(ctx context.Context, m *model.StudentScholarship) error
	FindAssignment(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.StudentScholarship, error)
	FindActiveAssignment(ctx context.Context, scope helperAuth.TenantScope, studentID, scholarshipID, sessionID uuid.UUID) (*model.StudentScholarship, error)
	ListActiveAssignments(ctx context.Context, scope helperAuth.TenantScope, studentID, sessionID uuid.UUID) ([]model.StudentScholarship, error)
	ListAssignments(ctx context.Context, scope helperAuth.TenantScope, f AssignmentFilter, p Page) ([]model.StudentScholarship, int64, error)
	UpdateAssignmentDiscount(ctx context.Context, id uuid.UUID, amount int64) error
	DeactivateAssignment(ctx context.Context, id uuid.UUID, at time.Time) error
	ListStudentSessionsForScholarship(ctx context.Context, scope helperAuth.TenantScope, scholarshipID uuid.UUID) ([]StudentSession, error)

	// Installments (read port)
	ListInstallments(ctx context.Context, scope helperAuth.TenantScope, structureID uuid.UUID) ([]model.FeeInstallment, error)
}
