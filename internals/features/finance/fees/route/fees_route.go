package route

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"schoolku_backend/internals/features/finance/fees/controller"
	"schoolku_backend/internals/features/finance/fees/repository"
	"schoolku_backend/internals/features/finance/fees/service"
)

// NewFeesHandler merakit store + cache + service. rdb nil → tanpa cache summary.
func NewFeesHandler(db *gorm.DB, rdb *redis.Client, summaryTTL time.Duration, log *slog.Logger) *controller.Handler {
	var cache service.SummaryCache
	if rdb != nil {
		cache = service.NewRedisSummaryCache(rdb, summaryTTL)
	}
	svc := service.New(service.Options{
		Store:  repository.NewGormStore(db),
		Cache:  cache,
		Logger: log,
	})
	return controller.NewHandler(svc, log)
}

/*
Admin routes (keuangan sekolah). Guard staff dipasang di group pemanggil.
*/
func FeesAdminRoutes(admin fiber.Router, h *controller.Handler) {
	grp := admin.Group("/fees")

	// =========================
	// Fee Components
	// =========================
	grp.Get("/components", h.ListComponents)
	grp.Post("/components", h.CreateComponent)
	grp.Get("/components/:id", h.GetComponent)
	grp.Patch("/components/:id", h.UpdateComponent)
	grp.Patch("/components/:id/active", h.ToggleComponent)

	// =========================
	// Scholarships
	// =========================
	grp.Get("/scholarships", h.ListScholarships)
	grp.Post("/scholarships", h.CreateScholarship)
	grp.Get("/scholarships/:id", h.GetScholarship)
	grp.Patch("/scholarships/:id", h.UpdateScholarship)
	grp.Patch("/scholarships/:id/active", h.ToggleScholarship)

	// =========================
	// Templates
	// =========================
	grp.Get("/templates", h.ListTemplates)
	grp.Post("/templates", h.CreateTemplate)
	grp.Get("/templates/:id", h.GetTemplate)
	grp.Put("/templates/:id/items", h.ReplaceTemplateItems)
	grp.Patch("/templates/:id/active", h.ToggleTemplate)

	// =========================
	// Student Fee Structures
	// =========================
	grp.Get("/structures", h.ListStructures)
	grp.Post("/structures", h.CreateStructure)
	grp.Get("/structures/:id", h.GetStructure)
	grp.Put("/structures/:id/line-items", h.UpdateStructureLineItems)
	grp.Put("/structures/:id/custom-discount", h.SetStructureCustomDiscount)
	grp.Delete("/structures/:id/custom-discount", h.ClearStructureCustomDiscount)
	grp.Post("/structures/:id/recalculate", h.RecalculateStructure)
	grp.Get("/students/:student_id/sessions/:session_id/summary", h.GetStructureSummary)

	// =========================
	// Student Scholarships
	// =========================
	grp.Get("/student-scholarships", h.ListAssignments)
	grp.Post("/student-scholarships", h.AssignScholarship)
	grp.Get("/student-scholarships/:id", h.GetAssignment)
	grp.Delete("/student-scholarships/:id", h.RemoveScholarship)
}

// User routes: siswa/wali melihat strukturnya sendiri.
func FeesUserRoutes(user fiber.Router, h *controller.Handler) {
	grp := user.Group("/fees/my")
	grp.Get("/sessions/:session_id", h.MyStructure)
	grp.Get("/sessions/:session_id/summary", h.MyStructureSummary)
}
