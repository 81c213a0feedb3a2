// file: internals/features/finance/fees/controller/student_scholarship_controller.go
package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/dto"
	"schoolku_backend/internals/features/finance/fees/repository"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

var assignmentSort = map[string]string{
	"created_at": "student_scholarship_created_at",
	"amount":     "student_scholarship_discount_amount",
}

// POST /api/a/fees/student-scholarships
func (h *Handler) AssignScholarship(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	var in dto.StudentScholarshipCreateDTO
	if err := helper.BindAndValidate(c, &in); err != nil {
		return h.writeError(c, err)
	}
	var approvedBy *uuid.UUID
	if uid, err := helperAuth.GetUserID(c); err == nil {
		approvedBy = &uid
	}
	m, err := h.Svc.Assignments.Assign(c.UserContext(), scope, in.ToInput(approvedBy))
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonCreated(c, "scholarship assigned", dto.ToStudentScholarshipResponse(*m))
}

// DELETE /api/a/fees/student-scholarships/:id
// Soft remove: is_active=false, struktur dihitung ulang.
func (h *Handler) RemoveScholarship(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Assignments.Remove(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonDeleted(c, "scholarship removed", dto.ToStudentScholarshipResponse(*m))
}

// GET /api/a/fees/student-scholarships/:id
func (h *Handler) GetAssignment(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.writeError(c, err)
	}
	m, err := h.Svc.Assignments.Get(c.UserContext(), scope, id)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToStudentScholarshipResponse(*m))
}

// GET /api/a/fees/student-scholarships?student_id=&session_id=&scholarship_id=&active=
func (h *Handler) ListAssignments(c *fiber.Ctx) error {
	scope, err := h.scope(c)
	if err != nil {
		return h.writeError(c, err)
	}
	params, pg, err := page(c, assignmentSort, "created_at", "desc")
	if err != nil {
		return h.writeError(c, err)
	}
	f := repository.AssignmentFilter{}
	if f.StudentID, err = queryUUID(c, "student_id"); err != nil {
		return h.writeError(c, err)
	}
	if f.SessionID, err = queryUUID(c, "session_id"); err != nil {
		return h.writeError(c, err)
	}
	if f.ScholarshipID, err = queryUUID(c, "scholarship_id"); err != nil {
		return h.writeError(c, err)
	}
	if active := queryBool(c, "active"); active != nil && *active {
		f.ActiveOnly = true
	}
	rows, total, err := h.Svc.Assignments.List(c.UserContext(), scope, f, pg)
	if err != nil {
		return h.writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToStudentScholarshipResponses(rows), helper.BuildPagination(total, params, len(rows)))
}
