// Package template resolves and renders lifecycle email templates. A
// persisted override deployed for (app, name) wins over the builtin catalog;
// both are rendered with the same placeholder interpolation.
package template

import (
	"fmt"
	"regexp"
)

// ErrNotFound is returned when neither a persisted nor a builtin template
// exists for an (app, event) pair.
type ErrNotFound struct {
	AppID     string
	EventType string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("no template for event '%s' in app '%s'", e.EventType, e.AppID)
}

// Definition is the raw template text before interpolation.
type Definition struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Template is a resolved template ready to render.
type Template struct {
	Definition
	// FromAddress and MessageStream come from a persisted override when set;
	// empty means the delivery client's configured defaults apply.
	FromAddress   string
	MessageStream string
}

// Rendered is the interpolated output handed to the delivery client.
type Rendered struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// Render interpolates the template's subject and bodies against metadata.
func (t Template) Render(metadata map[string]any) Rendered {
	return Rendered{
		Subject:  Interpolate(t.Subject, metadata),
		HTMLBody: Interpolate(t.HTMLBody, metadata),
		TextBody: Interpolate(t.TextBody, metadata),
	}
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Interpolate replaces every {{identifier}} occurrence with the stringified
// metadata value. Absent keys and nil values become the empty string.
// Substitution is a single pass: values containing placeholders are not
// re-expanded, and no HTML escaping is applied.
func Interpolate(s string, metadata map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := metadata[key]
		if !ok || value == nil {
			return ""
		}
		if str, ok := value.(string); ok {
			return str
		}
		return fmt.Sprintf("%v", value)
	})
}
