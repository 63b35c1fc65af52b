package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/publish"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/utils"
)

// StatusHandler handles the radiation and mutation routes
type StatusHandler struct {
	DB        *gorm.DB
	Cache     cache.Cache
	Publisher publish.Publisher
}

// respond runs the post-commit hooks and sends the updated horse
func (h *StatusHandler) respond(c *fiber.Ctx, op string, horse *models.Horse, message string) error {
	services.AfterStatusChange(c.UserContext(), h.Publisher, h.Cache, op, horse)
	return utils.MessageResponse(c, horse, message, fiber.StatusOK)
}

// Radiate handles POST /api/horse/:id/radiate
// @Summary Radiate a horse
// @Description Mark a horse as radiated and flag its tests, performances and prophylaxies in one transaction
// @Tags Status
// @Accept json
// @Produce json
// @Param id path string true "Horse ID"
// @Param radiation body services.RadiateInput true "Radiation"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id}/radiate [post]
func (h *StatusHandler) Radiate(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	in, err := decodeBody[services.RadiateInput](c)
	if err != nil {
		return err
	}
	horse, err := services.RadiateHorse(h.DB, id, in)
	if err != nil {
		return err
	}
	return h.respond(c, publish.OpRadiate, horse, "Horse radiated")
}

// CancelRadiation handles POST /api/horse/:id/cancel-radiation
// @Summary Cancel a radiation
// @Tags Status
// @Produce json
// @Param id path string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id}/cancel-radiation [post]
func (h *StatusHandler) CancelRadiation(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	horse, err := services.CancelRadiation(h.DB, id)
	if err != nil {
		return err
	}
	return h.respond(c, publish.OpCancelRadiation, horse, "Radiation cancelled")
}

// Mutate handles POST /api/horse/:id/mutate
// @Summary Transfer a horse
// @Description Record the transfer of a horse and flag its dependent records in one transaction
// @Tags Status
// @Accept json
// @Produce json
// @Param id path string true "Horse ID"
// @Param mutation body services.MutateInput true "Transfer"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id}/mutate [post]
func (h *StatusHandler) Mutate(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	in, err := decodeBody[services.MutateInput](c)
	if err != nil {
		return err
	}
	horse, err := services.MutateHorse(h.DB, id, in)
	if err != nil {
		return err
	}
	return h.respond(c, publish.OpMutate, horse, "Horse mutated")
}

// CancelMutation handles POST /api/horse/:id/cancel-mutation
// @Summary Cancel a transfer
// @Tags Status
// @Produce json
// @Param id path string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id}/cancel-mutation [post]
func (h *StatusHandler) CancelMutation(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	horse, err := services.CancelMutation(h.DB, id)
	if err != nil {
		return err
	}
	return h.respond(c, publish.OpCancelMutation, horse, "Mutation cancelled")
}

// RadiatedHorses handles GET /api/radiated-horses
// @Summary List radiated horses
// @Tags Status
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Horse}
// @Security CookieAuth
// @Router /radiated-horses [get]
func (h *StatusHandler) RadiatedHorses(c *fiber.Ctx) error {
	horses, err := services.ListRadiatedHorses(h.DB)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, horses, fiber.StatusOK)
}

// MutatedHorses handles GET /api/mutated-horses
// @Summary List transferred horses
// @Tags Status
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Horse}
// @Security CookieAuth
// @Router /mutated-horses [get]
func (h *StatusHandler) MutatedHorses(c *fiber.Ctx) error {
	horses, err := services.ListMutatedHorses(h.DB)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, horses, fiber.StatusOK)
}

// RadiationDetails handles GET /api/horse/:id/radiation-details
// @Summary Get the radiation of a horse
// @Tags Status
// @Produce json
// @Param id path string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.RadiationDetails}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id}/radiation-details [get]
func (h *StatusHandler) RadiationDetails(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	details, err := services.GetRadiationDetails(h.DB, id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, details, fiber.StatusOK)
}

// MutationDetails handles GET /api/horse/:id/mutation-details
// @Summary Get the transfer of a horse
// @Tags Status
// @Produce json
// @Param id path string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.MutationDetails}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id}/mutation-details [get]
func (h *StatusHandler) MutationDetails(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	details, err := services.GetMutationDetails(h.DB, id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, details, fiber.StatusOK)
}
