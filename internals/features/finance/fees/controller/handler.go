// file: internals/features/finance/fees/controller/handler.go
package controller

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"schoolku_backend/internals/features/finance/fees/repository"
	"schoolku_backend/internals/features/finance/fees/service"
	helper "schoolku_backend/internals/helpers"
	helperAuth "schoolku_backend/internals/helpers/auth"
)

// =======================================================
// BOOTSTRAP
// =======================================================

type Handler struct {
	Svc *service.Services
	Log *slog.Logger
}

func NewHandler(svc *service.Services, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Svc: svc, Log: log.With("layer", "http", "module", "fees")}
}

// =======================================================
// HELPERS
// =======================================================

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Params(name)))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, name+" tidak valid")
	}
	return id, nil
}

// queryUUID: nil kalau kosong; error kalau formatnya salah.
func queryUUID(c *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+" tidak valid")
	}
	return &id, nil
}

func queryBool(c *fiber.Ctx, name string) *bool {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// page: parse query pagination + ORDER BY dari whitelist.
func page(c *fiber.Ctx, allowed map[string]string, defaultKey, defaultOrder string) (helper.Params, repository.Page, error) {
	p := helper.ParseFiber(c, defaultKey, defaultOrder, helper.AdminOpts)
	order, err := p.SafeOrder(allowed, defaultKey)
	if err != nil {
		return p, repository.Page{}, err
	}
	return p, repository.Page{Limit: p.Limit(), Offset: p.Offset(), OrderBy: order}, nil
}

// writeError memetakan error domain ke status HTTP.
func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		de *service.DuplicateError
		ce *service.ConsistencyError
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		fields := make(map[string][]string, len(ve.Fields))
		for _, f := range ve.Fields {
			fields[f.Field] = append(fields[f.Field], f.Message)
		}
		return helper.JsonValidationError(c, fields)
	case errors.Is(err, helper.ErrBadJSON):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &nf):
		return helper.JsonError(c, fiber.StatusNotFound, nf.Error())
	case errors.As(err, &de):
		return helper.JsonError(c, fiber.StatusConflict, de.Error())
	case errors.As(err, &ce):
		h.Log.ErrorContext(c.UserContext(), "fee structure consistency violation",
			"structure_id", ce.StructureID, "error", ce.Err, "path", c.Path())
		return helper.JsonErrorCode(c, fiber.StatusInternalServerError, "CONSISTENCY_ERROR", "fee structure snapshot is inconsistent")
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	}
	if m, ok := helper.ValidationErrorMap(err); ok {
		return helper.JsonValidationError(c, m)
	}
	h.Log.ErrorContext(c.UserContext(), "fees request failed", "error", err, "method", c.Method(), "path", c.Path())
	return helper.FromFiberError(c, err)
}

// scope + staff guard dipasang di route group; di sini cukup resolve scope.
func (h *Handler) scope(c *fiber.Ctx) (helperAuth.TenantScope, error) {
	return helperAuth.GetTenantScope(c)
}
