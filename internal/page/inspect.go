package page

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Container describes one top-level section element.
type Container struct {
	ID     string
	Hidden bool
}

// Outline is what Inspect extracts from a generated document.
type Outline struct {
	Title      string
	Sections   []Container
	HeroKeys   []string
	Stylesheet string
	HasModal   bool
	HasScript  bool
	LoadErrors []string
	Data       json.RawMessage
}

// Visible returns the ids of sections not marked hidden.
func (o *Outline) Visible() []string {
	var ids []string
	for _, s := range o.Sections {
		if !s.Hidden {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Count returns how many section containers have id.
func (o *Outline) Count(id string) int {
	n := 0
	for _, s := range o.Sections {
		if s.ID == id {
			n++
		}
	}
	return n
}

// Problems lists structural defects: a section missing or repeated, any
// section other than heroes initially visible, or the modal or script absent.
func (o *Outline) Problems() []string {
	var problems []string
	for _, id := range SectionIDs {
		if n := o.Count(id); n != 1 {
			problems = append(problems, fmt.Sprintf("section %q appears %d times", id, n))
		}
	}
	if visible := o.Visible(); len(visible) != 1 || visible[0] != SectionHeroes {
		problems = append(problems, fmt.Sprintf("visible sections are %v, want [%s]", visible, SectionHeroes))
	}
	if !o.HasModal {
		problems = append(problems, "hero modal is missing")
	}
	if !o.HasScript {
		problems = append(problems, "navigation script is missing")
	}
	return problems
}

// Inspect parses a generated document and reports its structure.
func Inspect(r io.Reader) (*Outline, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	out := &Outline{}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				out.Title = strings.TrimSpace(textOf(n))
			case "link":
				if getAttr(n, "rel") == "stylesheet" {
					out.Stylesheet = getAttr(n, "href")
				}
			case "section":
				if hasClass(n, "content") {
					_, hidden := lookupAttr(n, "hidden")
					out.Sections = append(out.Sections, Container{ID: getAttr(n, "id"), Hidden: hidden})
				}
			case "script":
				switch getAttr(n, "id") {
				case "site-data":
					out.Data = json.RawMessage(strings.TrimSpace(textOf(n)))
				case "":
					if strings.Contains(textOf(n), "showSection") {
						out.HasScript = true
					}
				}
			case "p":
				if hasClass(n, "load-error") {
					out.LoadErrors = append(out.LoadErrors, strings.TrimSpace(textOf(n)))
				}
			}
			if key, ok := lookupAttr(n, "data-hero-key"); ok {
				out.HeroKeys = append(out.HeroKeys, key)
			}
			if getAttr(n, "id") == "hero-modal" {
				out.HasModal = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(out.Data) > 0 && !json.Valid(out.Data) {
		return out, errors.New("site data is not valid JSON")
	}
	return out, nil
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func getAttr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
