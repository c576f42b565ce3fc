package handlers

import (
	"usermgmt/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: newValidator(),
	}
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name            string `json:"name" validate:"required,min=1,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=32,bcryptlen"`
	PasswordConfirm string `json:"password_confirm" validate:"required,min=6,max=32,bcryptlen"`
}

// UpdateUserRequest is the body of PUT /users/:id.
type UpdateUserRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=100"`
	Email string `json:"email" validate:"required,email"`
}

// PatchUserRequest is the body of PATCH /users/:id.
type PatchUserRequest struct {
	Name               string `json:"name" validate:"required,min=1,max=100"`
	Email              string `json:"email" validate:"required,email"`
	OldPassword        string `json:"old_password" validate:"required,min=6,max=32,bcryptlen"`
	OldPasswordConfirm string `json:"old_password_confirm" validate:"required,min=6,max=32,bcryptlen"`
	NewPassword        string `json:"new_password" validate:"required,min=6,max=32,bcryptlen"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,min=6,max=32,bcryptlen"`
}

// RegisterRoutes registers the user routes. Creating an account is public;
// every other route runs behind auth. limit guards the credential change.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler, limit fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", auth, h.HandleGetUsers)
	userRoutes.Get("/:id", auth, h.HandleGetUser)
	userRoutes.Put("/:id", auth, h.HandleUpdateUser)
	userRoutes.Patch("/:id", auth, limit, h.HandlePatchUser)
	userRoutes.Delete("/:id", auth, h.HandleDeleteUser)
}

// HandleGetUsers lists all users.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(users)
}

// HandleGetUser returns a single user.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	user, err := h.service.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleCreateUser registers a new account.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if ok, err := bindBody(c, h.validate, &req); !ok {
		return err
	}

	res, err := h.service.CreateUser(c.UserContext(), services.CreateUserInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// HandleUpdateUser changes the name and email of an account.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if ok, err := bindBody(c, h.validate, &req); !ok {
		return err
	}

	res, err := h.service.UpdateUser(c.UserContext(), services.UpdateUserInput{
		ID:    c.Params("id"),
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// HandlePatchUser changes the password of an account.
func (h *UserHandler) HandlePatchUser(c *fiber.Ctx) error {
	var req PatchUserRequest
	if ok, err := bindBody(c, h.validate, &req); !ok {
		return err
	}

	res, err := h.service.PatchUser(c.UserContext(), services.PatchUserInput{
		ID:                 c.Params("id"),
		Name:               req.Name,
		Email:              req.Email,
		OldPassword:        req.OldPassword,
		OldPasswordConfirm: req.OldPasswordConfirm,
		NewPassword:        req.NewPassword,
		NewPasswordConfirm: req.NewPasswordConfirm,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// HandleDeleteUser removes an account.
func (h *UserHandler) HandleDeleteUser(c *fiber.Ctx) error {
	res, err := h.service.DeleteUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}
