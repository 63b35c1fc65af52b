package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// AuthHandler handles signup, signin and the first-run check
type AuthHandler struct {
	DB   *gorm.DB
	Auth services.Authenticator
}

func (h *AuthHandler) init(c *fiber.Ctx) error {
	if err := h.Auth.Init(c.Protocol(), c.Hostname()); err != nil {
		return &types.CustomError{Code: fiber.StatusServiceUnavailable, Message: err.Error(), Type: "AuthError"}
	}
	return nil
}

// SignUp handles POST /api/signup
// @Summary Register a user
// @Description The first registered user becomes admin, later users are consultants
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body services.Credentials true "Credentials"
// @Success 201 {object} utils.SuccessResponseStruct{data=models.User}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /signup [post]
func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	in, err := decodeBody[services.Credentials](c)
	if err != nil {
		return err
	}
	if err := h.init(c); err != nil {
		return err
	}
	user, err := services.SignUp(h.DB, h.Auth, in)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, user, "User registered", fiber.StatusCreated)
}

// SignIn handles POST /api/signin
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body services.Credentials true "Credentials"
// @Success 200 {object} utils.SuccessResponseStruct{data=services.SigninResult}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /signin [post]
func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	in, err := decodeBody[services.Credentials](c)
	if err != nil {
		return err
	}
	if err := h.init(c); err != nil {
		return err
	}
	result, err := services.SignIn(h.DB, h.Auth, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// CheckUsers handles GET /api/check-users
// @Summary Report whether any user is registered
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Router /check-users [get]
func (h *AuthHandler) CheckUsers(c *fiber.Ctx) error {
	has, err := services.HasUsers(h.DB)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"hasUsers": has}, fiber.StatusOK)
}
