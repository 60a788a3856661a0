// Package render turns fetched collections into HTML fragments and the
// inline JSON data block consumed by the page script.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/overfastsite/internal/foundation"
	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/logfields"
	"git.home.luguber.info/inful/overfastsite/internal/overfast"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var fragments = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"roleBadge": badgeFor,
	"joinModes": JoinGamemodes,
}).ParseFS(templateFS, "templates/*.tmpl"))

// Heroes renders the hero portrait grid.
func Heroes(r foundation.Result[[]overfast.Hero, error]) template.HTML {
	return fragment(overfast.EndpointHeroes, r)
}

// Roles renders the role cards.
func Roles(r foundation.Result[[]overfast.Role, error]) template.HTML {
	return fragment(overfast.EndpointRoles, r)
}

// Gamemodes renders the gamemode cards.
func Gamemodes(r foundation.Result[[]overfast.Gamemode, error]) template.HTML {
	return fragment(overfast.EndpointGamemodes, r)
}

// Maps renders the map cards.
func Maps(r foundation.Result[[]overfast.Map, error]) template.HTML {
	return fragment(overfast.EndpointMaps, r)
}

// LoadError is the placeholder shown for a collection that failed to load.
func LoadError(section string) template.HTML {
	return execute("load-error", section, section)
}

// JoinGamemodes formats a map's gamemode list for display.
func JoinGamemodes(modes []string) string {
	return strings.Join(modes, ", ")
}

func fragment[T any](section string, r foundation.Result[[]T, error]) template.HTML {
	if r.IsErr() {
		return LoadError(section)
	}
	return execute(section, r.Unwrap(), section)
}

// execute never fails the page: a template error degrades to the placeholder.
func execute(name string, data any, section string) template.HTML {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("Failed to render fragment", logfields.Section(section), logfields.Error(err))
		if name == "load-error" {
			return template.HTML(`<p class="load-error">Error loading content.</p>`) // #nosec G203 -- constant markup
		}
		return LoadError(section)
	}
	return template.HTML(buf.String()) // #nosec G203 -- produced by html/template
}

// siteData is the shape of the inline JSON block.
type siteData struct {
	APIBaseURL string              `json:"apiBaseUrl"`
	Heroes     []overfast.Hero     `json:"heroes"`
	Roles      []overfast.Role     `json:"roles"`
	Gamemodes  []overfast.Gamemode `json:"gamemodes"`
	Maps       []overfast.Map      `json:"maps"`
}

// Data serializes the collections for the page script. Failed collections are
// emitted as null. The encoder escapes <, > and & so the result is safe inside
// a script element.
func Data(c overfast.Collections, apiBaseURL string) (template.JS, error) {
	payload := siteData{
		APIBaseURL: apiBaseURL,
		Heroes:     c.Heroes.UnwrapOr(nil),
		Roles:      c.Roles.UnwrapOr(nil),
		Gamemodes:  c.Gamemodes.UnwrapOr(nil),
		Maps:       c.Maps.UnwrapOr(nil),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryRender, "encode site data").Build()
	}
	return template.JS(raw), nil // #nosec G203 -- JSON produced by encoding/json
}
