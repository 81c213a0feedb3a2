// file: internals/features/finance/fees/controller/fee_structure_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/model"
	"schoolku_backend/internals/features/finance/fees/repository"
	helper "schoolku_backend/internals/helpers"
)

var structureSort = map[string]string{
	"created_at": "fee_structure_created_at",
	"net":        "fee_structure_net_amount",
	"gross":      "fee_structure_gross_amount",
}

// POST /api/a/fees/structures
// template_id tanpa line_items → item disalin dari template.
func (h *Handler) CreateStructure(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.FeeStructureCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}

	var m *model.StudentFeeStructure
	if in.FromTemplate() {
		m, err = h.Svc.Structures.CreateFromTemplate(c.UserContext(), scope, in.StudentID, in.SessionID, *in.TemplateID, in.CustomDiscountInput())
	} else {
		m, err = h.Svc.Structures.Create(c.UserContext(), scope, in.ToInput())
	}
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonCreated(c, "fee structure created", dto.ToFeeStructureResponse(*m, nil))
}

// PUT /api/a/fees/structures/:id/line-items
func (h *Handler) UpdateStructureLineItems(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.FeeStructureLineItemsDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Structures.UpdateLineItems(c.UserContext(), scope, id, in.ToItems())
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonUpdated(c, "fee structure updated", dto.ToFeeStructureResponse(*m, nil))
}

// PUT /api/a/fees/structures/:id/custom-discount
func (h *Handler) SetStructureCustomDiscount(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.CustomDiscountDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Structures.SetCustomDiscount(c.UserContext(), scope, id, in.ToInput())
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonUpdated(c, "custom discount applied", dto.ToFeeStructureResponse(*m, nil))
}

// DELETE /api/a/fees/structures/:id/custom-discount
func (h *Handler) ClearStructureCustomDiscount(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Structures.ClearCustomDiscount(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonDeleted(c, "custom discount removed", dto.ToFeeStructureResponse(*m, nil))
}

// POST /api/a/fees/structures/:id/recalculate
func (h *Handler) RecalculateStructure(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Recalculator.RecalculateStructure(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "fee structure recalculated", dto.ToFeeStructureResponse(*m, nil))
}

// GET /api/a/fees/structures/:id
func (h *Handler) GetStructure(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	d, err := h.Svc.Structures.Get(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeStructureDetailResponse(d))
}

// GET /api/a/fees/structures?student_id=&session_id=&source=
func (h *Handler) ListStructures(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	params, pg, err := page(c, structureSort, "created_at", "desc")
	if err != nil {
		return h.writeError(c, err)
	}
	studentID, err := queryUUID(c, "student_id")
	if err != nil {
		return h.writeError(c, err)
	}
	sessionID, err := queryUUID(c, "session_id")
	if err != nil {
		return h.writeError(c, err)
	}
	f := repository.StructureFilter{
		StudentID: studentID,
		SessionID: sessionID,
		Source:    strings.TrimSpace(c.Query("source")),
	}
	rows, total, err := h.Svc.Structures.List(c.UserContext(), scope, f, pg)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToFeeStructureResponses(rows), helper.BuildPagination(total, params, len(rows)))
}

// GET /api/a/fees/students/:student_id/sessions/:session_id/summary
func (h *Handler) GetStructureSummary(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	studentID, err := parseUUIDParam(c, "student_id")
	if err != nil {
		return h.writeError(c, err)
	}
	sessionID, err := parseUUIDParam(c, "session_id")
	if err != nil {
		return h.writeError(c, err)
	}
	sum, err := h.Svc.Structures.Summary(c.UserContext(), scope, studentID, sessionID)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", sum)
}
