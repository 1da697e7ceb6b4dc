package template

import (
	"regexp"

	"github.com/dmitrymomot/pushkit/pkg/notification"
)

// placeholderRe matches {{key}} tokens, tolerating inner whitespace.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Template defines a named notification layout with variable
// placeholders in the title and body.
type Template struct {
	ID            string                `json:"id"`
	TitleTemplate string                `json:"title_template"`
	BodyTemplate  string                `json:"body_template"`
	Category      notification.Category `json:"category"`
	Priority      notification.Priority `json:"priority"`
	Variables     []string              `json:"variables,omitempty"`
}

// Render substitutes {{key}} tokens in the title and body templates.
// Unmatched keys are replaced with an empty string rather than left as
// literal placeholders, so a missing variable never leaks markup to the
// user.
func (t Template) Render(vars map[string]string) (title, body string) {
	return substitute(t.TitleTemplate, vars), substitute(t.BodyTemplate, vars)
}

func substitute(s string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(token string) string {
		key := placeholderRe.FindStringSubmatch(token)[1]
		return vars[key]
	})
}
