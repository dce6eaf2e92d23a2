// Package http holds the JSON handlers of the REST API.
package http

import (
	"github.com/karloscodes/cartridge"

	"devconnector/internal/auth"
	"devconnector/internal/github"
	"devconnector/internal/http/middleware"
)

// Handlers carries the services that handlers need beyond the request context.
type Handlers struct {
	Tokens *auth.TokenService
	GitHub *github.Client
}

// NewHandlers creates the API handlers.
func NewHandlers(tokens *auth.TokenService, gh *github.Client) *Handlers {
	return &Handlers{Tokens: tokens, GitHub: gh}
}

func currentUserID(ctx *cartridge.Context) string {
	return middleware.CurrentUserID(ctx.Ctx)
}
