// file: internals/features/finance/fees/controller/fee_structure_user_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_backend/internals/features/finance/fees/dto"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// GET /api/u/fees/my/sessions/:session_id
// Siswa/wali hanya bisa melihat struktur miliknya sendiri (student_id dari token).
func (h *Handler) MyStructure(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	studentID, err := helperAuth.GetStudentID(c)
	if err != nil {
		return h.writeError(c, err)
	}
	sessionID, err := parseUUIDParam(c, "session_id")
	if err != nil {
		return h.writeError(c, err)
	}
	d, err := h.Svc.Structures.GetFor(c.UserContext(), scope, studentID, sessionID)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToFeeStructureDetailResponse(d))
}

// GET /api/u/fees/my/sessions/:session_id/summary
func (h *Handler) MyStructureSummary(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	studentID, err := helperAuth.GetStudentID(c)
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
