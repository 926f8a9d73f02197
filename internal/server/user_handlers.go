package server

import (
	"devconnector/internal/middleware"
	"devconnector/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UsersPing handles GET /api/users/test
func (s *Server) UsersPing(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Connected to users"})
}

// Register handles POST /api/users/register
// @Summary Register
// @Description Create an account. The password hash is never returned.
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration"
// @Success 200 {object} models.PublicUser
// @Failure 400 {object} models.ErrorResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// Login handles POST /api/users/login
// @Summary Login
// @Description Exchange email and password for a bearer token valid for one hour.
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} object{success=bool,token=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req service.LoginInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	token, err := s.userService.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "token": token})
}

// CurrentUser handles GET /api/users/current
// @Summary Current user
// @Description Identity carried by the bearer token.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.PublicUser
// @Failure 401 {object} models.ErrorResponse
// @Router /users/current [get]
func (s *Server) CurrentUser(c *fiber.Ctx) error {
	claims, _ := middleware.ClaimsFrom(c)
	user, err := s.userService.Current(claims)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
