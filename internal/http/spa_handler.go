package http

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

// ClientFallback serves the client build for GET requests no route matched: the asset
// when the path names one, index.html otherwise so the client router can take over.
// API paths are left to 404.
func ClientFallback(client fs.FS) fiber.Handler {
	return filesystem.New(filesystem.Config{
		Root:         http.FS(client),
		Index:        "index.html",
		NotFoundFile: "index.html",
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
				return true
			}
			return strings.HasPrefix(c.Path(), "/api/")
		},
	})
}
