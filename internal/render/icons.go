package render

import (
	"html/template"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var roleIcons = map[string]template.HTML{
	"tank": `<svg class="role-icon role-icon-tank" viewBox="0 0 24 24" width="24" height="24" aria-hidden="true"><path fill="currentColor" d="M12 2 4 5v6c0 5 3.4 9.7 8 11 4.6-1.3 8-6 8-11V5l-8-3z"/></svg>`,
	"damage": `<svg class="role-icon role-icon-damage" viewBox="0 0 24 24" width="24" height="24" aria-hidden="true"><path fill="currentColor" d="M7 2h3v14H7zM14 2h3v14h-3zM5 18h7v4H5zM12 18h7v4h-7z"/></svg>`,
	"support": `<svg class="role-icon role-icon-support" viewBox="0 0 24 24" width="24" height="24" aria-hidden="true"><path fill="currentColor" d="M9 2h6v7h7v6h-7v7H9v-7H2V9h7z"/></svg>`,
}

// RoleIcon returns the inline SVG badge for role. Lookup is case-insensitive;
// an unknown role reports false.
func RoleIcon(role string) (template.HTML, bool) {
	icon, ok := roleIcons[strings.ToLower(strings.TrimSpace(role))]
	return icon, ok
}

// RoleName returns the display name of a role key, e.g. "support" -> "Support".
func RoleName(role string) string {
	// Caser is stateful; one per call keeps concurrent renders safe.
	return cases.Title(language.English).String(strings.TrimSpace(role))
}

type roleBadge struct {
	Name string
	Icon template.HTML
}

// badgeFor feeds the hero template; nil hides the badge.
func badgeFor(role string) *roleBadge {
	icon, ok := RoleIcon(role)
	if !ok {
		return nil
	}
	return &roleBadge{Name: RoleName(role), Icon: icon}
}
