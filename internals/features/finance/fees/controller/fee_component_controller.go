// file: internals/features/finance/fees/controller/fee_component_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/repository"
	helper "schoolku_backend/internals/helpers"
)

var componentSort = map[string]string{
	"name":       "fee_component_name",
	"type":       "fee_component_type",
	"created_at": "fee_component_created_at",
}

// POST /api/a/fees/components
func (h *Handler) CreateComponent(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.FeeComponentCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Components.Create(c.UserContext(), scope, in.ToInput())
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonCreated(c, "fee component created", dto.ToFeeComponentResponse(*m))
}

// PATCH /api/a/fees/components/:id
func (h *Handler) UpdateComponent(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.FeeComponentUpdateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	cur, err := h.Svc.Components.Get(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Components.Update(c.UserContext(), scope, id, dto.ApplyFeeComponentUpdate(cur, in))
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonUpdated(c, "fee component updated", dto.ToFeeComponentResponse(*m))
}

// PATCH /api/a/fees/components/:id/active
func (h *Handler) ToggleComponent(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.ToggleActiveDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Components.SetActive(c.UserContext(), scope, id, *in.IsActive)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonUpdated(c, "fee component updated", dto.ToFeeComponentResponse(*m))
}

// GET /api/a/fees/components/:id
func (h *Handler) GetComponent(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Components.Get(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeComponentResponse(*m))
}

// GET /api/a/fees/components?q=&type=&is_active=
func (h *Handler) ListComponents(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	params, pg, err := page(c, componentSort, "name", "asc")
	if err != nil {
		return h.writeError(c, err)
	}
	f := repository.ComponentFilter{
		Q:        strings.TrimSpace(c.Query("q")),
		Type:     strings.TrimSpace(c.Query("type")),
		IsActive: queryBool(c, "is_active"),
	}
	rows, total, err := h.Svc.Components.List(c.UserContext(), scope, f, pg)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeComponentResponses(rows), helper.BuildPagination(total, params, len(rows)))
}
