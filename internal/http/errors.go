package http

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnector/internal/github"
	"devconnector/internal/posts"
	"devconnector/internal/profiles"
	"devconnector/internal/users"
	"devconnector/internal/validation"
)

// respondError writes the response for err. Anything not recognised is logged and
// reported as a bare 500.
func respondError(ctx *cartridge.Context, err error) error {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return validationFailed(ctx, verrs)
	case errors.Is(err, users.ErrUserExists):
		return validationFailed(ctx, validation.Single("User already exists"))
	case errors.Is(err, users.ErrInvalidCredentials):
		return validationFailed(ctx, validation.Single("Invalid Credentials"))
	case errors.Is(err, profiles.ErrProfileNotFound):
		return message(ctx, fiber.StatusNotFound, "Profile not found")
	case errors.Is(err, posts.ErrPostNotFound):
		return message(ctx, fiber.StatusNotFound, "Post not found")
	case errors.Is(err, posts.ErrCommentNotFound):
		return message(ctx, fiber.StatusNotFound, "Comment does not exist")
	case errors.Is(err, users.ErrUserNotFound):
		return message(ctx, fiber.StatusNotFound, "User not found")
	case errors.Is(err, posts.ErrNotAuthorized):
		return message(ctx, fiber.StatusUnauthorized, "User is not authorized")
	case errors.Is(err, posts.ErrAlreadyLiked):
		return message(ctx, fiber.StatusBadRequest, "Post already liked")
	case errors.Is(err, posts.ErrNotLiked):
		return message(ctx, fiber.StatusBadRequest, "Post has not yet been liked")
	case errors.Is(err, github.ErrUserNotFound):
		return message(ctx, fiber.StatusNotFound, "No Github profile found")
	case errors.Is(err, github.ErrUpstream):
		ctx.Logger.Warn("GitHub request failed", slog.Any("error", err))
		return message(ctx, fiber.StatusBadGateway, "GitHub request failed")
	}

	ctx.Logger.Error("Request failed",
		slog.String("method", ctx.Method()),
		slog.String("path", ctx.Path()),
		slog.Any("error", err))
	return message(ctx, fiber.StatusInternalServerError, "Server Error")
}

func message(ctx *cartridge.Context, status int, msg string) error {
	return ctx.Status(status).JSON(fiber.Map{"msg": msg})
}

func validationFailed(ctx *cartridge.Context, errs validation.Errors) error {
	return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
}

// parseBody decodes the JSON body into req and validates it. An empty body leaves req
// zero valued so the field rules report what is missing.
func parseBody(ctx *cartridge.Context, req interface{}) error {
	if len(ctx.Body()) == 0 {
		return validation.Struct(req)
	}
	if err := ctx.BodyParser(req); err != nil {
		ctx.Logger.Debug("Invalid request body", slog.Any("error", err))
		return validation.Single("Invalid request body")
	}
	return validation.Struct(req)
}
