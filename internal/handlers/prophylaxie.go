package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/utils"
)

// ProphylaxieHandler handles preventive care routes
type ProphylaxieHandler struct {
	DB    *gorm.DB
	Store services.FileStore
	Now   Clock
}

// CreateProphylaxie handles POST /api/prophylaxie
// @Summary Create a prophylaxie
// @Description Create a preventive care record; details are decoded according to the type
// @Tags Prophylaxies
// @Accept json
// @Produce json
// @Param prophylaxie body services.ProphylaxieInput true "Prophylaxie"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /prophylaxie [post]
func (h *ProphylaxieHandler) CreateProphylaxie(c *fiber.Ctx) error {
	rec, err := services.CreateProphylaxie(h.DB, c.Body())
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, rec, "Prophylaxie created", fiber.StatusCreated)
}

// ListProphylaxies handles GET /api/prophylaxie
// @Summary List prophylaxies
// @Tags Prophylaxies
// @Produce json
// @Param type query string false "Prophylaxie types, comma-separated"
// @Param maladie query string false "Vaccinated disease"
// @Param startDate query string false "From date (inclusive)"
// @Param endDate query string false "To date (inclusive)"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /prophylaxie [get]
func (h *ProphylaxieHandler) ListProphylaxies(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	result, err := services.ListProphylaxies(h.DB, q, h.Now.now())
	if err != nil {
		return err
	}
	return listResponse(c, result)
}

// GetProphylaxie handles GET /api/oneprophylaxie/:id
// @Summary Get a prophylaxie
// @Tags Prophylaxies
// @Produce json
// @Param id path string true "Prophylaxie ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /oneprophylaxie/{id} [get]
func (h *ProphylaxieHandler) GetProphylaxie(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rec, err := services.GetProphylaxie(h.DB, id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rec, fiber.StatusOK)
}

// ProphylaxiesByHorse handles GET /api/horse-prophylaxie?horse=
// @Summary List the prophylaxies of a horse
// @Tags Prophylaxies
// @Produce json
// @Param horse query string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse-prophylaxie [get]
func (h *ProphylaxieHandler) ProphylaxiesByHorse(c *fiber.Ctx) error {
	horse, err := queryID(c, "horse")
	if err != nil {
		return err
	}
	recs, err := services.ProphylaxiesByHorse(h.DB, horse)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recs, fiber.StatusOK)
}

// UpdateProphylaxie handles PUT /api/prophylaxie?id=
// @Summary Update a prophylaxie
// @Tags Prophylaxies
// @Accept json
// @Produce json
// @Param id query string true "Prophylaxie ID"
// @Param prophylaxie body services.ProphylaxieInput true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /prophylaxie [put]
func (h *ProphylaxieHandler) UpdateProphylaxie(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.UpdateProphylaxie(h.DB, id, c.Body())
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, rec, "Prophylaxie updated", fiber.StatusOK)
}

// DeleteProphylaxie handles DELETE /api/prophylaxie?id=
// @Summary Delete a prophylaxie
// @Description Delete a prophylaxie and its upload folder
// @Tags Prophylaxies
// @Produce json
// @Param id query string true "Prophylaxie ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /prophylaxie [delete]
func (h *ProphylaxieHandler) DeleteProphylaxie(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.DeleteProphylaxie(h.DB, h.Store, id)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, rec, "Prophylaxie deleted", fiber.StatusOK)
}

// ProphylaxieTypes handles GET /api/prophylaxie-types
// @Summary List the prophylaxie types
// @Tags Prophylaxies
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=[]string}
// @Router /prophylaxie-types [get]
func (h *ProphylaxieHandler) ProphylaxieTypes(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, models.ProphylaxieTypes, fiber.StatusOK)
}
