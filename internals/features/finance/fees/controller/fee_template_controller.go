// file: internals/features/finance/fees/controller/fee_template_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/repository"
	helper "schoolku_backend/internals/helpers"
)

var templateSort = map[string]string{
	"name":       "fee_template_name",
	"created_at": "fee_template_created_at",
}

// POST /api/a/fees/templates
func (h *Handler) CreateTemplate(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.FeeTemplateCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Templates.Create(c.UserContext(), scope, in.ToInput())
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonCreated(c, "fee template created", dto.ToFeeTemplateResponse(*m))
}

// PUT /api/a/fees/templates/:id/items
// Struktur yang sudah dibuat dari template ini tidak berubah.
func (h *Handler) ReplaceTemplateItems(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.FeeTemplateReplaceItemsDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Templates.ReplaceItems(c.UserContext(), scope, id, in.FeeTemplateName, in.ToItems())
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonUpdated(c, "fee template updated", dto.ToFeeTemplateResponse(*m))
}

// PATCH /api/a/fees/templates/:id/active
func (h *Handler) ToggleTemplate(c *fiber.Ctx) error {
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
	m, err := h.Svc.Templates.SetActive(c.UserContext(), scope, id, *in.IsActive)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonUpdated(c, "fee template updated", dto.ToFeeTemplateResponse(*m))
}

// GET /api/a/fees/templates/:id
func (h *Handler) GetTemplate(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Templates.Get(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeTemplateResponse(*m))
}

// GET /api/a/fees/templates?batch_id=&session_id=&is_active=
func (h *Handler) ListTemplates(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	params, pg, err := page(c, templateSort, "created_at", "desc")
	if err != nil {
		return h.writeError(c, err)
	}
	batchID, err := queryUUID(c, "batch_id")
	if err != nil {
		return h.writeError(c, err)
	}
	sessionID, err := queryUUID(c, "session_id")
	if err != nil {
		return h.writeError(c, err)
	}
	f := repository.TemplateFilter{BatchID: batchID, SessionID: sessionID, IsActive: queryBool(c, "is_active")}
	rows, total, err := h.Svc.Templates.List(c.UserContext(), scope, f, pg)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeTemplateResponses(rows), helper.BuildPagination(total, params, len(rows)))
}
