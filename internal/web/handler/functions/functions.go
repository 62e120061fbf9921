// Package functions serves the three bible functions: the scripture api proxy,
// the legacy MySQL reader and the importer. Request and response bodies keep the
// shape the web client already speaks.
package functions

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/biblia-online/biblia/internal/importer"
	"github.com/biblia-online/biblia/internal/legacy"
	"github.com/biblia-online/biblia/internal/scripture"
	"github.com/biblia-online/biblia/internal/versesapi"
	"github.com/biblia-online/biblia/internal/web/handler"
)

const (
	// BibleAPIPath is the scripture api proxy.
	BibleAPIPath = handler.FunctionsPath + "/bible-api"
	// BibleMySQLPath is the legacy database reader.
	BibleMySQLPath = handler.FunctionsPath + "/bible-mysql"
	// BibleImportPath is the importer.
	BibleImportPath = handler.FunctionsPath + "/bible-import"
)

var errNilDeps = errors.New("functions: app or dependencies are nil")

// Service is the functions handler service.
type Service struct {
	scripture *scripture.Client
	verses    *versesapi.Client
	legacy    *legacy.Store
	importer  *importer.Importer
}

// Handler is the functions handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the function routes.
func (s *Service) Init(app *fiber.App, deps *handler.Deps) error {
	if app == nil || deps == nil {
		return errNilDeps
	}

	s.scripture = deps.Scripture
	s.verses = deps.Verses
	s.legacy = deps.Legacy
	s.importer = deps.Importer

	app.Post(BibleAPIPath, s.BibleAPI)
	app.Post(BibleMySQLPath, s.BibleMySQL)
	app.Post(BibleImportPath, s.BibleImport)

	return nil
}

// params are the loosely typed parameters of a function call.
type params map[string]any

// str returns a parameter as string. Numbers are formatted without exponent.
func (p params) str(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// int returns a numeric parameter, def when missing or not a number.
func (p params) int(key string, def int) int {
	n, err := strconv.Atoi(p.str(key))
	if err != nil {
		return def
	}

	return n
}

func decode(body []byte, v any) error {
	return json.Unmarshal(body, v)
}

// sendRaw writes an upstream JSON body unchanged.
func sendRaw(c *fiber.Ctx, status int, body []byte) error {
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return c.Status(status).Send(body)
}
