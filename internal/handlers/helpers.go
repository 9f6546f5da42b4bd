// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bufio"
	"io"
	"net/http"
	"strings"

	"codeberg.org/oliverandrich/disney-bounding/internal/apperr"
	"codeberg.org/oliverandrich/disney-bounding/internal/appcontext"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(c.Request().Context(), buf); err != nil {
		return err
	}

	return c.HTML(statusCode, buf.String())
}

// renderPartial renders fragment for htmx requests and the full page
// otherwise. htmx only swaps 2xx responses, so fragments are always 200.
func renderPartial(c echo.Context, statusCode int, fragment, page templ.Component) error {
	if appcontext.From(c).Htmx.WantsPartial() {
		return Render(c, http.StatusOK, fragment)
	}
	return Render(c, statusCode, page)
}

// jsonError writes err as {"error": message}. Causes never reach the client.
func jsonError(c echo.Context, err error) error {
	return c.JSON(apperr.Status(err), map[string]string{"error": apperr.PublicMessage(err)})
}

func isAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// streamImage copies an image to the response, sniffing its content type
// when the name does not reveal it.
func streamImage(c echo.Context, rc io.ReadCloser, contentType, cacheControl string) error {
	defer rc.Close()

	br := bufio.NewReader(rc)
	if contentType == "" {
		head, _ := br.Peek(512)
		contentType = http.DetectContentType(head)
	}
	c.Response().Header().Set("Cache-Control", cacheControl)
	c.Response().Header().Set("X-Content-Type-Options", "nosniff")
	return c.Stream(http.StatusOK, contentType, br)
}
