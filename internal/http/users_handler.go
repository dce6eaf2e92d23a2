package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnector/internal/users"
)

type registerRequest struct {
	Name     string `json:"name" validate:"notblank" msg:"Name is required"`
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"min=6" msg:"Please enter a password with 6 or more characters"`
}

// RegisterAction creates an account and signs the new user in.
func (h *Handlers) RegisterAction(ctx *cartridge.Context) error {
	var req registerRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	user, err := users.Register(ctx.DB(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(ctx, err)
	}
	ctx.Logger.Info("User registered", slog.String("user_id", user.ID))

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"token": token})
}
