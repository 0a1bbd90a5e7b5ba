package server

import (
	"empleos/internal/middleware"
	"empleos/internal/models"
	"empleos/internal/service"

	"github.com/gofiber/fiber/v2"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// RegisterJobSeeker handles POST /api/auth/register
// @Summary Job seeker signup
// @Description Register a job seeker account. A verification e-mail is sent.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterJobSeekerInput true "Signup request"
// @Success 201 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) RegisterJobSeeker(c *fiber.Ctx) error {
	var req service.RegisterJobSeekerInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.authService.RegisterJobSeeker(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful. Check your e-mail to verify the account.",
		"user":    user,
	})
}

// RegisterCompany handles POST /api/auth/register/company
// @Summary Company signup
// @Description Register a company user and its company, pending admin approval.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.RegisterCompanyInput true "Signup request"
// @Success 201 {object} object{message=string,user=models.User,company=models.Company}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/register/company [post]
func (s *Server) RegisterCompany(c *fiber.Ctx) error {
	var req service.RegisterCompanyInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, company, err := s.authService.RegisterCompany(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration received. The company will be reviewed by an administrator.",
		"user":    user,
		"company": company,
	})
}

// RegisterOMIL handles POST /api/auth/register/omil
func (s *Server) RegisterOMIL(c *fiber.Ctx) error {
	var req service.RegisterOMILInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, org, err := s.authService.RegisterOMIL(c.UserContext(), req)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration received. The organization will be reviewed by an administrator.",
		"user":    user,
		"omil":    org,
	})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate any user type and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	return s.login(c, "")
}

// LoginCompany handles POST /api/auth/login/company. Only company users
// may sign in here; the response carries the company.
func (s *Server) LoginCompany(c *fiber.Ctx) error {
	return s.login(c, models.UserTypeCompany)
}

func (s *Server) login(c *fiber.Ctx, portal models.UserType) error {
	var req credentialsRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Email and password are required"))
	}
	result, err := s.authService.Login(c.UserContext(), req.Email, req.Password, portal)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(result)
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), claimsFrom(c)); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	actor, _ := middleware.ActorFrom(c)
	detail, err := s.adminService.GetUser(c.UserContext(), actor.UserID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{
		"user":            detail.User,
		"profile":         detail.Profile,
		"company":         detail.Company,
		"omil":            detail.OMIL,
		"impersonator_id": actor.ImpersonatorID,
	})
}

// VerifyEmail handles POST /api/auth/verify-email
func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req tokenRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.authService.VerifyEmail(c.UserContext(), req.Token); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Email verified"})
}

// ResendVerification handles POST /api/auth/resend-verification
func (s *Server) ResendVerification(c *fiber.Ctx) error {
	var req emailRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.authService.ResendVerification(c.UserContext(), req.Email); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "If the account is pending verification, a new e-mail was sent"})
}

// ForgotPassword handles POST /api/auth/forgot-password
// @Summary Request a password reset
// @Description Always answers 200 so the endpoint cannot be used to discover accounts.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Account e-mail"
// @Success 200 {object} object{message=string}
// @Router /auth/forgot-password [post]
func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req emailRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.authService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "forgot password failed", "error", err.Error())
	}
	return c.JSON(fiber.Map{"message": "If the e-mail is registered, a reset link was sent"})
}

// ResetPassword handles POST /api/auth/reset-password
func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req tokenRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.authService.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated"})
}
