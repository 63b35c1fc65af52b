package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/utils"
)

// listResponse sends a filtered list, with the no-match message when the horse filters matched nothing
func listResponse[T any](c *fiber.Ctx, result services.ListResult[T]) error {
	if result.Message != "" {
		return utils.MessageResponse(c, result.Records, result.Message, fiber.StatusOK)
	}
	return utils.SuccessResponse(c, result.Records, fiber.StatusOK)
}

// TestHandler handles medical test routes
type TestHandler struct {
	DB    *gorm.DB
	Store services.FileStore
	Cache cache.Cache
	Now   Clock
}

// CreateTest handles POST /api/test
// @Summary Create a test
// @Tags Tests
// @Accept json
// @Produce json
// @Param test body services.TestInput true "Test"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Test}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /test [post]
func (h *TestHandler) CreateTest(c *fiber.Ctx) error {
	rec, err := services.CreateTest(h.DB, c.Body())
	if err != nil {
		return err
	}
	services.InvalidateDashboard(c.UserContext(), h.Cache)
	return utils.MessageResponse(c, rec, "Test created", fiber.StatusCreated)
}

// ListTests handles GET /api/test
// @Summary List tests
// @Description List tests filtered by horse attributes and test fields, newest first
// @Tags Tests
// @Produce json
// @Param race query string false "Horse race"
// @Param ageRange query string false "Horse age bucket"
// @Param startDate query string false "From date (inclusive)"
// @Param endDate query string false "To date (inclusive)"
// @Param type query string false "Test types, comma-separated"
// @Param isRadie query bool false "Radiated flag"
// @Param isMutated query bool false "Mutated flag"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Test}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /test [get]
func (h *TestHandler) ListTests(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	result, err := services.ListTests(h.DB, q, h.Now.now())
	if err != nil {
		return err
	}
	return listResponse(c, result)
}

// GetTest handles GET /api/onetest/:id
// @Summary Get a test
// @Tags Tests
// @Produce json
// @Param id path string true "Test ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Test}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /onetest/{id} [get]
func (h *TestHandler) GetTest(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	rec, err := services.GetTest(h.DB, id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, rec, fiber.StatusOK)
}

// TestsByHorse handles GET /api/horse-test?horse=
// @Summary List the tests of a horse
// @Tags Tests
// @Produce json
// @Param horse query string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Test}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse-test [get]
func (h *TestHandler) TestsByHorse(c *fiber.Ctx) error {
	horse, err := queryID(c, "horse")
	if err != nil {
		return err
	}
	recs, err := services.TestsByHorse(h.DB, horse)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recs, fiber.StatusOK)
}

// UpdateTest handles PUT /api/test?id=
// @Summary Update a test
// @Tags Tests
// @Accept json
// @Produce json
// @Param id query string true "Test ID"
// @Param test body services.TestInput true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Test}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /test [put]
func (h *TestHandler) UpdateTest(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.UpdateTest(h.DB, id, c.Body())
	if err != nil {
		return err
	}
	services.InvalidateDashboard(c.UserContext(), h.Cache)
	return utils.MessageResponse(c, rec, "Test updated", fiber.StatusOK)
}

// DeleteTest handles DELETE /api/test?id=
// @Summary Delete a test
// @Description Delete a test and its upload folder
// @Tags Tests
// @Produce json
// @Param id query string true "Test ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Test}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /test [delete]
func (h *TestHandler) DeleteTest(c *fiber.Ctx) error {
	id, err := queryID(c, "id")
	if err != nil {
		return err
	}
	rec, err := services.DeleteTest(h.DB, h.Store, id)
	if err != nil {
		return err
	}
	services.InvalidateDashboard(c.UserContext(), h.Cache)
	return utils.MessageResponse(c, rec, "Test deleted", fiber.StatusOK)
}

// TestTypes handles GET /api/test-types
// @Summary List the test types on record
// @Tags Tests
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=[]string}
// @Security CookieAuth
// @Router /test-types [get]
func (h *TestHandler) TestTypes(c *fiber.Ctx) error {
	kinds, err := services.TestTypes(h.DB)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, kinds, fiber.StatusOK)
}
