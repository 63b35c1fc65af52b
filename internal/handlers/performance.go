package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/utils"
)

// PerformanceHandler handles competition result routes
type PerformanceHandler struct {
	DB  *gorm.DB
	Now Clock
}

// CreatePerformance handles POST /api/performance
// @Summary Create a performance
// @Tags Performances
// @Accept json
// @Produce json
// @Param performance body services.PerformanceInput true "Performance"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Performance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /performance [post]
func (h *PerformanceHandler) CreatePerformance(c *fiber.Ctx) error {
	rec, err := services.CreatePerformance(h.DB, c.Body())
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, rec, "Performance created", fiber.StatusCreated)
}

// ListPerformances handles GET /api/performance
// @Summary List performances
// @Tags Performances
// @Produce json
// @Param competitionType query string false "Competition type"
// @Param epreuve query string false "Event"
// @Param lieu query string false "Venue"
// @Param cavalier query string false "Rider"
// @Param startDate query string false "From date (inclusive)"
// @Param endDate query string false "To date (inclusive)"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Performance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /performance [get]
func (h *PerformanceHandler) ListPerformances(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	result, err := services.ListPerformances(h.DB, q, h.Now.now())
	if err != nil {
		return err
	}
	return listResponse(c, result)
}

// PerformancesByHorse handles GET /api/horse-perf?horse=
// @Summary List the performances of a horse
// @Tags Performances
// @Produce json
// @Param horse query string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Performance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse-perf [get]
func (h *PerformanceHandler) PerformancesByHorse(c *fiber.Ctx) error {
	horse, err := queryID(c, "horse")
	if err != nil {
		return err
	}
	recs, err := services.PerformancesByHorse(h.DB, horse)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recs, fiber.StatusOK)
}

// UpdatePerformance handles PUT /api/performance?id=
// @Summary Update a performance
// @Tags Performances
// @Accept json
// @Produce json
// @Param id query string true "Performance ID"
// @Param performance body services.PerformanceInput true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Performance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /performance [put]
func (h *PerformanceHandler) UpdatePerformance(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.UpdatePerformance(h.DB, id, c.Body())
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, rec, "Performance updated", fiber.StatusOK)
}

// DeletePerformance handles DELETE /api/performance?id=
// @Summary Delete a performance
// @Tags Performances
// @Produce json
// @Param id query string true "Performance ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Performance}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /performance [delete]
func (h *PerformanceHandler) DeletePerformance(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.DeletePerformance(h.DB, id)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, rec, "Performance deleted", fiber.StatusOK)
}
