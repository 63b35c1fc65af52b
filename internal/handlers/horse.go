// horse.go
//
// An equine records REST service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of equirecords.
// equirecords is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// equirecords is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with equirecords.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// HorseHandler handles horse routes
type HorseHandler struct {
	DB    *gorm.DB
	Store services.FileStore
	Cache cache.Cache
	Now   Clock
}

// CreateHorse handles POST /api/horse
// @Summary Create a horse
// @Description Create a horse; horseId is assigned from the counter when absent
// @Tags Horses
// @Accept json
// @Produce json
// @Param horse body services.HorseInput true "Horse"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse [post]
func (h *HorseHandler) CreateHorse(c *fiber.Ctx) error {
	horse, err := services.CreateHorse(h.DB, c.Body())
	if err != nil {
		return err
	}
	services.InvalidateDashboard(c.UserContext(), h.Cache)
	return utils.MessageResponse(c, horse, "Horse created", fiber.StatusCreated)
}

// ListHorses handles GET /api/horse
// @Summary List horses
// @Description List non-radiated horses, or every horse with all=true, filtered by horse attributes
// @Tags Horses
// @Produce json
// @Param etat query string false "Health state"
// @Param race query string false "Race"
// @Param robe query string false "Coat"
// @Param discipline query string false "Discipline"
// @Param ageRange query string false "Age bucket" Enums(0-4, 5-7, 8-12, 13-15, 16-18, 18-20, >20)
// @Param pere query string false "Father name"
// @Param mere query string false "Mother name"
// @Param taille query string false "Height"
// @Param provenance query string false "Origin"
// @Param affectation query string false "Assignment"
// @Param search query string false "Name or matricule"
// @Param all query bool false "Include radiated horses"
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse [get]
func (h *HorseHandler) ListHorses(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return err
	}
	horses, err := services.ListHorses(h.DB, q, h.Now.now())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, horses, fiber.StatusOK)
}

// GetHorse handles GET /api/horse/:id
// @Summary Get a horse
// @Description Get a horse with its parents populated
// @Tags Horses
// @Produce json
// @Param id path string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id} [get]
func (h *HorseHandler) GetHorse(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	horse, err := services.GetHorse(h.DB, id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, horse, fiber.StatusOK)
}

// UpdateHorse handles PATCH and PUT /api/horse/:id
// @Summary Update a horse
// @Description Merge the body over the stored horse; status fields are ignored
// @Tags Horses
// @Accept json
// @Produce json
// @Param id path string true "Horse ID"
// @Param horse body services.HorseInput true "Fields to change"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id} [patch]
func (h *HorseHandler) UpdateHorse(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	horse, err := services.UpdateHorse(h.DB, id, c.Body())
	if err != nil {
		return err
	}
	services.InvalidateDashboard(c.UserContext(), h.Cache)
	return utils.MessageResponse(c, horse, "Horse updated", fiber.StatusOK)
}

// DeleteHorse handles DELETE /api/horse/:id
// @Summary Delete a horse
// @Description Delete a horse and its upload folder; dependent records are kept
// @Tags Horses
// @Produce json
// @Param id path string true "Horse ID"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/{id} [delete]
func (h *HorseHandler) DeleteHorse(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	horse, err := services.DeleteHorse(h.DB, h.Store, id)
	if err != nil {
		return err
	}
	services.InvalidateDashboard(c.UserContext(), h.Cache)
	return utils.MessageResponse(c, horse, "Horse deleted", fiber.StatusOK)
}

// HorsesByCategory handles GET /api/horse/category/:category
// @Summary List horses by category
// @Tags Horses
// @Produce json
// @Param category path string true "Category" Enums(actifs, radies, mutes, malade, sain, en rétablissement)
// @Success 200 {object} utils.SuccessResponseStruct{data=[]models.Horse}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /horse/category/{category} [get]
func (h *HorseHandler) HorsesByCategory(c *fiber.Ctx) error {
	category, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return types.BadRequest("ValidationError", "invalid category %q", c.Params("category"))
	}
	horses, err := services.HorsesByCategory(h.DB, category)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, horses, fiber.StatusOK)
}
