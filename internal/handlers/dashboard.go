package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// DashboardHandler handles the overview and calendar routes
type DashboardHandler struct {
	DB       *gorm.DB
	Cache    cache.Cache
	CacheTTL time.Duration
}

// GetDashboard handles GET /api/dashboard
// @Summary Get the herd dashboard
// @Description Counts, distributions and top pathologies; served from cache when available
// @Tags Dashboard
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=services.Dashboard}
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	d, err := services.GetDashboard(c.UserContext(), h.DB, h.Cache, h.CacheTTL)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, d, fiber.StatusOK)
}

// Events handles GET /api/events?from=&to=
// @Summary Reminder calendar
// @Description Count the test and prophylaxie reminders per day
// @Tags Dashboard
// @Produce json
// @Param from query string false "First day"
// @Param to query string false "Last day"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.DayEvents}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /events [get]
func (h *DashboardHandler) Events(c *fiber.Ctx) error {
	from, err := optionalDate(c.Query("from"), "from")
	if err != nil {
		return err
	}
	to, err := optionalDate(c.Query("to"), "to")
	if err != nil {
		return err
	}
	if len(c.Query("to")) == len("2006-01-02") {
		// a plain date includes the whole day
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	days, err := services.CalendarEvents(h.DB, from, to)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, days, fiber.StatusOK)
}

// DayEvents handles GET /api/events/:date
// @Summary Reminders of one day
// @Tags Dashboard
// @Produce json
// @Param date path string true "Day (YYYY-MM-DD)"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]services.Reminder}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /events/{date} [get]
func (h *DashboardHandler) DayEvents(c *fiber.Ctx) error {
	reminders, err := services.DayReminders(h.DB, c.Params("date"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, reminders, fiber.StatusOK)
}

func optionalDate(s, name string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := types.ParseFlexTime(s)
	if err != nil {
		return time.Time{}, types.BadRequest("ValidationError", "invalid %s %q", name, s)
	}
	return t, nil
}
