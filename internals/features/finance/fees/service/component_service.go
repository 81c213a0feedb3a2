// file: internals/features/finance/fees/service/component_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

type ComponentService struct {
	*base
}

type ComponentInput struct {
	Name        string
	Type        model.FeeComponentType
	Description *string
}

func validComponentType(t model.FeeComponentType) bool {
	switch t {
	case model.FeeComponentTuition, model.FeeComponentAdmission, model.FeeComponentTransport,
		model.FeeComponentExam, model.FeeComponentLibrary, model.FeeComponentHostel,
		model.FeeComponentMaterial, model.FeeComponentOther:
		return true
	}
	return false
}

func (in *ComponentInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = model.FeeComponentType(strings.ToLower(strings.TrimSpace(string(in.Type))))
	if in.Name == "" {
		return invalid("fee_component_name", "is required")
	}
	if !validComponentType(in.Type) {
		return invalid("fee_component_type", "unknown component type")
	}
	return nil
}

func (s *ComponentService) Create(ctx context.Context, scope helperAuth.TenantScope, in ComponentInput) (*model.FeeComponent, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	m := &model.FeeComponent{
		FeeComponentOrgID:       scope.OrgID,
		FeeComponentName:        in.Name,
		FeeComponentType:        in.Type,
		FeeComponentDescription: in.Description,
		FeeComponentIsActive:    true,
	}
	if err := s.store.CreateComponent(ctx, m); err != nil {
		return nil, duplicateOr(err, ErrDuplicateComponent, "create fee component")
	}
	s.log.InfoContext(ctx, "fee component created", "org_id", scope.OrgID, "fee_component_id", m.FeeComponentID)
	return m, nil
}

func (s *ComponentService) Update(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID, in ComponentInput) (*model.FeeComponent, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	m, err := s.store.FindComponent(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "fee component", id)
	}
	m.FeeComponentName = in.Name
	m.FeeComponentType = in.Type
	m.FeeComponentDescription = in.Description
	if err := s.store.SaveComponent(ctx, m); err != nil {
		return nil, duplicateOr(err, ErrDuplicateComponent, "update fee component")
	}
	return m, nil
}

// SetActive = activate / deactivate (soft delete). Line item lama tetap mereferensikan komponen.
func (s *ComponentService) SetActive(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID, active bool) (*model.FeeComponent, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	m, err := s.store.FindComponent(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "fee component", id)
	}
	if m.FeeComponentIsActive == active {
		return m, nil
	}
	m.FeeComponentIsActive = active
	if err := s.store.SaveComponent(ctx, m); err != nil {
		return nil, fmt.Errorf("toggle fee component: %w", err)
	}
	s.log.InfoContext(ctx, "fee component toggled", "fee_component_id", id, "is_active", active)
	return m, nil
}

func (s *ComponentService) Get(ctx context.Context, scope helperAuth.TenantScope, id uuid.UUID) (*model.FeeComponent, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, err
	}
	m, err := s.store.FindComponent(ctx, scope, id)
	if err != nil {
		return nil, notFoundOr(err, "fee component", id)
	}
	return m, nil
}

func (s *ComponentService) List(ctx context.Context, scope helperAuth.TenantScope, f repository.ComponentFilter, p repository.Page) ([]model.FeeComponent, int64, error) {
	if err := s.requireScope(scope); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.store.ListComponents(ctx, scope, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list fee components: %w", err)
	}
	return rows, total, nil
}

// resolveComponents: semua id wajib milik org (else NotFound).
// requireActive → komponen nonaktif ditolak (ValidationError) untuk penambahan baru.
func resolveComponents(ctx context.Context, st repository.Store, scope helperAuth.TenantScope, ids []uuid.UUID, field string, requireActive bool) (map[uuid.UUID]model.FeeComponent, error) {
	uniq := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}

	rows, err := st.FindComponents(ctx, scope, uniq)
	if err != nil {
		return nil, fmt.Errorf("resolve fee components: %w", err)
	}
	byID := make(map[uuid.UUID]model.FeeComponent, len(rows))
	for _, r := range rows {
		byID[r.FeeComponentID] = r
	}
	for _, id := range uniq {
		c, ok := byID[id]
		if !ok {
			return nil, &NotFoundError{Entity: "fee component", ID: id}
		}
		if requireActive && !c.FeeComponentIsActive {
			return nil, invalid(field, fmt.Sprintf("fee component %q is inactive", c.FeeComponentName))
		}
	}
	return byID, nil
}
