package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/config"
	"github.com/localnerve/equirecords/internal/middleware"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/publish"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/storage"
)

// Deps are the dependencies shared by the route handlers
type Deps struct {
	DB        *gorm.DB
	Store     *storage.Store
	Cache     cache.Cache
	Publisher publish.Publisher
	Auth      services.Authenticator
	Config    *config.Config
	Now       Clock
}

// RegisterRoutes mounts every API route on router. guard builds the permission check of protected routes.
func RegisterRoutes(router fiber.Router, d Deps, guard middleware.Guard) {
	var ttl time.Duration
	if d.Config != nil {
		ttl = d.Config.DashboardCacheTTL
	}

	horses := &HorseHandler{DB: d.DB, Store: d.Store, Cache: d.Cache, Now: d.Now}
	status := &StatusHandler{DB: d.DB, Cache: d.Cache, Publisher: d.Publisher}
	tests := &TestHandler{DB: d.DB, Store: d.Store, Cache: d.Cache, Now: d.Now}
	perfs := &PerformanceHandler{DB: d.DB, Now: d.Now}
	prophylaxies := &ProphylaxieHandler{DB: d.DB, Store: d.Store, Now: d.Now}
	dashboard := &DashboardHandler{DB: d.DB, Cache: d.Cache, CacheTTL: ttl}
	uploads := &UploadHandler{DB: d.DB, Store: d.Store}
	auth := &AuthHandler{DB: d.DB, Auth: d.Auth}
	health := &HealthHandler{DB: d.DB, Config: d.Config, Cache: d.Cache}

	read := guard(models.PermRecordsRead)
	write := guard(models.PermRecordsWrite)
	remove := guard(models.PermRecordsDelete)
	changeStatus := guard(models.PermHorsesStatus)
	files := guard(models.PermFilesWrite)

	// Public routes
	router.Get("/health", health.Health)
	router.Get("/check-users", auth.CheckUsers)
	router.Post("/signup", auth.SignUp)
	router.Post("/signin", auth.SignIn)
	router.Get("/prophylaxie-types", prophylaxies.ProphylaxieTypes)

	// Horses
	router.Post("/horse", write, horses.CreateHorse)
	router.Get("/horse", read, horses.ListHorses)
	router.Get("/horse/category/:category", read, horses.HorsesByCategory)
	router.Get("/horse/:id", read, horses.GetHorse)
	router.Patch("/horse/:id", write, horses.UpdateHorse)
	router.Put("/horse/:id", write, horses.UpdateHorse)
	router.Delete("/horse/:id", remove, horses.DeleteHorse)

	// Status workflow
	router.Post("/horse/:id/radiate", changeStatus, status.Radiate)
	router.Post("/horse/:id/cancel-radiation", changeStatus, status.CancelRadiation)
	router.Get("/horse/:id/radiation-details", read, status.RadiationDetails)
	router.Get("/radiated-horses", read, status.RadiatedHorses)
	router.Post("/horse/:id/mutate", changeStatus, status.Mutate)
	router.Post("/horse/:id/cancel-mutation", changeStatus, status.CancelMutation)
	router.Get("/horse/:id/mutation-details", read, status.MutationDetails)
	router.Get("/mutated-horses", read, status.MutatedHorses)

	// Tests
	router.Post("/test", write, tests.CreateTest)
	router.Get("/test", read, tests.ListTests)
	router.Put("/test", write, tests.UpdateTest)
	router.Delete("/test", remove, tests.DeleteTest)
	router.Get("/horse-test", read, tests.TestsByHorse)
	router.Get("/test-types", read, tests.TestTypes)
	router.Get("/onetest/:id", read, tests.GetTest)

	// Performances
	router.Post("/performance", write, perfs.CreatePerformance)
	router.Get("/performance", read, perfs.ListPerformances)
	router.Put("/performance", write, perfs.UpdatePerformance)
	router.Delete("/performance", remove, perfs.DeletePerformance)
	router.Get("/horse-perf", read, perfs.PerformancesByHorse)

	// Prophylaxies
	router.Post("/prophylaxie", write, prophylaxies.CreateProphylaxie)
	router.Get("/prophylaxie", read, prophylaxies.ListProphylaxies)
	router.Put("/prophylaxie", write, prophylaxies.UpdateProphylaxie)
	router.Delete("/prophylaxie", remove, prophylaxies.DeleteProphylaxie)
	router.Get("/horse-prophylaxie", read, prophylaxies.ProphylaxiesByHorse)
	router.Get("/oneprophylaxie/:id", read, prophylaxies.GetProphylaxie)

	// Dashboard and calendar
	router.Get("/dashboard", read, dashboard.GetDashboard)
	router.Get("/events", read, dashboard.Events)
	router.Get("/events/:date", read, dashboard.DayEvents)

	// Uploads
	router.Post("/upload", files, uploads.Upload)
	router.Post("/upload-prophylaxie-document", files, uploads.UploadProphylaxieDocument)
	router.Post("/update-prophylaxie-document", files, uploads.UpdateProphylaxieDocument)
	router.Post("/deletefile", files, uploads.DeleteFile)
}
