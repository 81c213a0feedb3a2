// file: internals/features/finance/fees/service/template_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/calc"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// TemplateService: template tagihan per batch & session.
// Struktur yang sudah dibuat dari template adalah snapshot, tidak ikut berubah.
type TemplateService struct {
	*base
}

type TemplateItemInput struct {
	FeeComponentID uuid.UUID
	Amount         int64
}

type TemplateInput struct {
	BatchID   uuid.UUID
	SessionID uuid.UUID
	Name      string
	Items     []TemplateItemInput
}

func validateTemplateItems(items []TemplateItemInput) error {
	var fields []calc.FieldError
	if len(items) == 0 {
		fields = append(fields, calc.FieldError{Field: "items", Message: "at least one item is required"})
	}
	seen := map[uuid.UUID]bool{}
	for i, it := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if it.FeeComponentID == uuid.Nil {
			fields = append(fields, calc.FieldError{Field: prefix + "fee_component_id", Message: "is required"})
		} else if seen[it.FeeComponentID] {
			fields = append(fields, calc.FieldError{Field: prefix + "fee_component_id", Message: "duplicate component in template"})
		}
		seen[it.FeeComponentID] = true
		fields = append(fields, amountErrors(prefix+"amount", it.Amount)...)
	}
	if len(fields) == 0 {
		var total int64
		for _, it := range items {
			total += it.Amount
			if total > calc.MaxAmount {
				fields = append(fields, calc.FieldError{Field: "items", Message: fmt.Sprintf("total must be <= %d", calc.MaxAmount)})
				break
			}
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func buildTemplateItems(items []TemplateItemInput) []model.FeeTemplateItem {
	out := make([]model.FeeTemplateItem, 0, len(items))
	for i, it := range items {
		out = append(out, model.FeeTemplateItem{
			FeeTemplateItemFeeComponentID: it.FeeComponentID,
			FeeTemplateItemAmount:         it.Amount,
			FeeTemplateItemSortOrder:      i + 1,
		})
	}
	return out
}

func templateComponentIDs(items []TemplateItemInput) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.FeeComponentID)
	}
	return ids
}

func (s *TemplateService) Create(ctx context.Context, scope helperAuth.TenantScope, in TemplateInput) (*model.FeeTemplate, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("fee_template_name", "is required")
	}
	if in.BatchID == uuid.Nil {
		return nil, invalid("fee_template_batch_id", "is required")
	}
	if err := validateTemplateItems(in.Items); err != nil {
		return nil, err
	}

	var out *model.FeeTemplate
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.FindSession(ctx, scope, in.SessionID); err != nil {
			return notFoundOr(err, "academic session", in.SessionID)
		}
		if _, err := resolveComponents(ctx, tx, scope, templateComponentIDs(in.Items), "items", true); err != nil {
			return err
		}
		m := &model.FeeTemplate{
			FeeTemplateOrgID:     scope.OrgID,
			FeeTemplateBatchID:   in.BatchID,
			FeeTemplateSessionID: in.SessionID,
			FeeTemplateName:      in.Name,
			FeeTemplateIsActive:  true,
			Items:                buildTemplateItems(in.Items),
		}
		if err := tx.CreateTemplate(ctx, m); err != nil {
			return duplicateOr(err, ErrDuplicateTemplate, "create fee template")
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "fee template created", "fee_template_id", out.FeeTemplateID, "items", len(out.Items), "total", out.Total())
	return out, nil
}

// ReplaceItems mengganti seluruh item template (nama opsional ikut diganti).
func (s *TemplateService) ReplaceItems(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID, name *string, items []TemplateItemInput) (*model.FeeTemplate, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := validateTemplateItems(items); err != nil {
		return nil, err
	}

	var out *model.FeeTemplate
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		m, err := tx.FindTemplate(ctx, scope, id)
		if err != nil {
			return notFoundOr(err, "fee template", id)
		}
		if _, err := resolveComponents(ctx, tx, scope, templateComponentIDs(items), "items", true); err != nil {
			return err
		}
		if name != nil && strings.TrimSpace(*name) != "" {
			m.FeeTemplateName = strings.TrimSpace(*name)
			if err := tx.SaveTemplate(ctx, m); err != nil {
				return duplicateOr(err, ErrDuplicateTemplate, "update fee template")
			}
		}
		newItems := buildTemplateItems(items)
		if err := tx.ReplaceTemplateItems(ctx, m.FeeTemplateID, newItems); err != nil {
			return fmt.Errorf("replace template items: %w", err)
		}
		m.Items = newItems
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *TemplateService) SetActive(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID, active bool) (*model.FeeTemplate, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	m, err := s.store.FindTemplate(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "fee template", id)
	}
	if m.FeeTemplateIsActive == active {
		return m, nil
	}
	m.FeeTemplateIsActive = active
	if err := s.store.SaveTemplate(ctx, m); err != nil {
		return nil, fmt.Errorf("toggle fee template: %w", err)
	}
	return m, nil
}

func (s *TemplateService) Get(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.FeeTemplate, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	m, err := s.store.FindTemplate(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "fee template", id)
	}
	return m, nil
}

func (s *TemplateService) List(ctx context.Context, scope helperAuth.TenantScope, f repository.TemplateFilter, p repository.Page) ([]model.FeeTemplate, int64, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.store.ListTemplates(ctx, scope, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list fee templates: %w", err)
	}
	return rows, total, nil
}
