package template

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-notification-hub/internal/domain"
)

var placeholderRe = regexp.MustCompile(`\{\{(.+?)\}\}`)

// unresolvedValue marks a path that could not be walked. It is distinct
// from nil, which is a resolved value that renders as "".
type unresolvedValue struct{}

var unresolved = unresolvedValue{}

// Render substitutes {{dotted.path}} placeholders in the template's subject
// and body. Paths that cannot be resolved are left verbatim and listed in
// Rendered.Unresolved. The template itself is never modified.
func Render(t domain.Template, vars map[string]any) domain.Rendered {
	var missing []string
	seen := make(map[string]struct{})
	note := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		missing = append(missing, path)
	}
	return domain.Rendered{
		Subject:    renderText(t.Subject, vars, note),
		Body:       renderText(t.Body, vars, note),
		Channel:    t.Channel,
		Unresolved: missing,
	}
}

func renderText(text string, vars map[string]any, note func(string)) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-2])
		v := lookup(vars, path)
		if v == unresolved {
			note(path)
			return match
		}
		return formatValue(v)
	})
}

// formatValue renders a resolved value as text. Floats print in plain
// decimal form, so JSON-decoded integers keep their digits.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// lookup walks path one segment at a time through nested string-keyed maps.
func lookup(vars map[string]any, path string) any {
	if path == "" {
		return unresolved
	}
	var cur any = vars
	for _, seg := range strings.Split(path, ".") {
		next, ok := child(cur, seg)
		if !ok {
			return unresolved
		}
		cur = next
	}
	return cur
}

func child(node any, key string) (any, bool) {
	switch m := node.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case map[string]string:
		v, ok := m[key]
		return v, ok
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(node)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}
