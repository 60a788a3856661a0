// Package page assembles the single generated HTML document and writes it to
// the output directory.
package page

import (
	"bytes"
	_ "embed"
	"html/template"

	ferrors "git.home.luguber.info/inful/overfastsite/internal/foundation/errors"
	"git.home.luguber.info/inful/overfastsite/internal/markdown"
	"git.home.luguber.info/inful/overfastsite/internal/version"
)

// FileName is the name of the emitted document inside the output directory.
const FileName = "index.html"

// Section ids in navigation order.
const (
	SectionHeroes    = "heroes"
	SectionRoles     = "roles"
	SectionGamemodes = "gamemodes"
	SectionMaps      = "maps"
	SectionPlayers   = "players"
)

// SectionIDs lists every section the document contains, in navigation order.
var SectionIDs = []string{SectionHeroes, SectionRoles, SectionGamemodes, SectionMaps, SectionPlayers}

//go:embed assets/page.html.tmpl
var pageTemplate string

//go:embed assets/players.html.tmpl
var playersFragment string

//go:embed assets/site.css
var siteCSS string

//go:embed assets/site.js
var siteJS string

var documentTemplate = template.Must(template.New("page").Parse(pageTemplate))

// Page is everything the document needs; fragments are pre-rendered.
type Page struct {
	Title      string
	Intro      string // Markdown
	Stylesheet string

	Heroes    template.HTML
	Roles     template.HTML
	Gamemodes template.HTML
	Maps      template.HTML

	// Data is the JSON object embedded as #site-data.
	Data template.JS
}

type section struct {
	ID     string
	Label  string
	Hidden bool
	Body   template.HTML
}

type view struct {
	Generator  string
	Title      string
	Intro      template.HTML
	Stylesheet string
	Styles     template.CSS
	Script     template.JS
	Sections   []section
	Data       template.JS
}

// Assemble renders the complete document. Only the heroes section starts visible.
func Assemble(p Page) ([]byte, error) {
	intro, err := markdown.Render(p.Intro, markdown.Options{GFM: true})
	if err != nil {
		return nil, err
	}
	data := p.Data
	if data == "" {
		data = "{}"
	}

	v := view{
		Generator:  version.UserAgent(),
		Title:      p.Title,
		Intro:      intro,
		Stylesheet: p.Stylesheet,
		Styles:     template.CSS(siteCSS), // #nosec G203 -- embedded asset
		Script:     template.JS(siteJS),   // #nosec G203 -- embedded asset
		Data:       data,
		Sections: []section{
			{ID: SectionHeroes, Label: "Heroes", Body: p.Heroes},
			{ID: SectionRoles, Label: "Roles", Hidden: true, Body: p.Roles},
			{ID: SectionGamemodes, Label: "Gamemodes", Hidden: true, Body: p.Gamemodes},
			{ID: SectionMaps, Label: "Maps", Hidden: true, Body: p.Maps},
			{ID: SectionPlayers, Label: "Players", Hidden: true, Body: template.HTML(playersFragment)}, // #nosec G203 -- embedded asset
		},
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, v); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "assemble page").Build()
	}
	return buf.Bytes(), nil
}
