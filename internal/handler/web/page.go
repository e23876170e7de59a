package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static
var static embed.FS

// PageHandler serves the single dashboard page.
type PageHandler struct {
	index []byte
}

func NewPageHandler() (*PageHandler, error) {
	b, err := fs.ReadFile(static, "static/index.html")
	if err != nil {
		return nil, err
	}
	return &PageHandler{index: b}, nil
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
}

func (h *PageHandler) Index(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
	return c.HTMLBlob(http.StatusOK, h.index)
}
