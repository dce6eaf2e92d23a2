package http

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"devconnector/internal/posts"
	"devconnector/internal/users"
)

type postRequest struct {
	Text string `json:"text" validate:"notblank" msg:"Text is required"`
}

// PostCreateAction publishes a post as the caller.
func (h *Handlers) PostCreateAction(ctx *cartridge.Context) error {
	var req postRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	db := ctx.DB()
	author, err := users.FindByID(db, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	post, err := posts.Create(db, author, req.Text)
	if err != nil {
		return respondError(ctx, err)
	}
	ctx.Logger.Debug("Post created", slog.String("post_id", post.ID), slog.String("user_id", author.ID))
	return ctx.JSON(post)
}

// PostsIndexAction lists posts, newest first.
func (h *Handlers) PostsIndexAction(ctx *cartridge.Context) error {
	list, err := posts.List(ctx.DB())
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(list)
}

// PostShowAction returns a single post.
func (h *Handlers) PostShowAction(ctx *cartridge.Context) error {
	post, err := posts.FindByID(ctx.DB(), ctx.Params("id"))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(post)
}

// PostDeleteAction deletes one of the caller's posts.
func (h *Handlers) PostDeleteAction(ctx *cartridge.Context) error {
	if err := posts.Delete(ctx.DB(), ctx.Params("id"), currentUserID(ctx)); err != nil {
		return respondError(ctx, err)
	}
	return message(ctx, fiber.StatusOK, "Post removed")
}

// PostLikeAction likes a post as the caller.
func (h *Handlers) PostLikeAction(ctx *cartridge.Context) error {
	db := ctx.DB()
	liker, err := users.FindByID(db, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	likes, err := posts.LikePost(db, ctx.Params("id"), liker.ID)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(likes)
}

// PostUnlikeAction withdraws the caller's like.
func (h *Handlers) PostUnlikeAction(ctx *cartridge.Context) error {
	likes, err := posts.UnlikePost(ctx.DB(), ctx.Params("id"), currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(likes)
}

// CommentCreateAction comments on a post as the caller.
func (h *Handlers) CommentCreateAction(ctx *cartridge.Context) error {
	var req postRequest
	if err := parseBody(ctx, &req); err != nil {
		return respondError(ctx, err)
	}

	db := ctx.DB()
	author, err := users.FindByID(db, currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}

	comments, err := posts.AddComment(db, ctx.Params("id"), author, req.Text)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(comments)
}

// CommentDeleteAction deletes one of the caller's comments.
func (h *Handlers) CommentDeleteAction(ctx *cartridge.Context) error {
	comments, err := posts.DeleteComment(ctx.DB(), ctx.Params("id"), ctx.Params("comment_id"), currentUserID(ctx))
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(comments)
}
