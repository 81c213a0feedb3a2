// file: internals/features/finance/fees/controller/scholarship_controller.go
package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/repository"
	helper "schoolku_backend/internals/helpers"
)

var scholarshipSort = map[string]string{
	"name":       "scholarship_name",
	"type":       "scholarship_type",
	"created_at": "scholarship_created_at",
}

// POST /api/a/fees/scholarships
func (h *Handler) CreateScholarship(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.ScholarshipCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Scholarships.Create(c.UserContext(), scope, in.ToInput())
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonCreated(c, "scholarship created", dto.ToScholarshipResponse(*m))
}

// PATCH /api/a/fees/scholarships/:id
// Semua struktur pemegang beasiswa ini dihitung ulang.
func (h *Handler) UpdateScholarship(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.ScholarshipUpdateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	cur, err := h.Svc.Scholarships.Get(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Scholarships.Update(c.UserContext(), scope, id, dto.ApplyScholarshipUpdate(cur, in))
	if err != nil && m == nil {
		return h.writeError(c, err)
	}
	if err != nil {
		// definisi tersimpan, sebagian recalculation gagal (sudah di-log per struktur)
		h.Log.WarnContext(c.UserContext(), "scholarship updated with recalculation failures", "scholarship_id", id, "error", err)
		return helper.JsonUpdated(c, "scholarship updated; some fee structures failed to recalculate", dto.ToScholarshipResponse(*m))
	}
	return helper.JsonUpdated(c, "scholarship updated", dto.ToScholarshipResponse(*m))
}

// PATCH /api/a/fees/scholarships/:id/active
func (h *Handler) ToggleScholarship(c *fiber.Ctx) error {
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
	m, err := h.Svc.Scholarships.SetActive(c.UserContext(), scope, id, *in.IsActive)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonUpdated(c, "scholarship updated", dto.ToScholarshipResponse(*m))
}

// GET /api/a/fees/scholarships/:id
func (h *Handler) GetScholarship(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Scholarships.Get(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToScholarshipResponse(*m))
}

// GET /api/a/fees/scholarships?q=&type=&basis=&is_active=
func (h *Handler) ListScholarships(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	params, pg, err := page(c, scholarshipSort, "name", "asc")
	if err != nil {
		return h.writeError(c, err)
	}
	f := repository.ScholarshipFilter{
		Q:        strings.TrimSpace(c.Query("q")),
		Type:     strings.TrimSpace(c.Query("type")),
		Basis:    strings.TrimSpace(c.Query("basis")),
		IsActive: queryBool(c, "is_active"),
	}
	rows, total, err := h.Svc.Scholarships.List(c.UserContext(), scope, f, pg)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToScholarshipResponses(rows), helper.BuildPagination(total, params, len(rows)))
}
