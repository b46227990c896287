// Package web embeds the HTML views served by the storefront.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	html "github.com/gofiber/template/html/v2"
)

//go:embed templates/*.html
var files embed.FS

// Views returns the template engine over the embedded templates.
func Views() fiber.Views {
	sub, err := fs.Sub(files, "templates")
	if err != nil {
		panic(err)
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
