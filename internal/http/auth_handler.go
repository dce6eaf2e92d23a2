package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnector/internal/users"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// CurrentUserAction returns the signed in user.
func (h *Handlers) CurrentUserAction(ctx *cartridge.Context) error {
	user, err := users.FindByID(ctx.DB(), currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(user)
}

// LoginAction exchanges an email and password for a token.
func (h *Handlers) LoginAction(ctx *cartridge.Context) error {
	var req loginRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	user, err := users.Authenticate(ctx.DB(), req.Email, req.Password)
	if err != nil {
		ctx.Logger.Debug("Login failed", slog.String("email", req.Email))
		return respondError(ctx, err)
	}

	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"token": token})
}
