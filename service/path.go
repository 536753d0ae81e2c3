package service

import (
	"fmt"
	"strings"
)

type pathPart struct {
	literal string
	param   string
}

// pathTemplate is a parsed "/{container}/{name}" style template.
type pathTemplate []pathPart

func parsePath(tmpl string) (pathTemplate, error) {
	var parts pathTemplate
	for tmpl != "" {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			parts = append(parts, pathPart{literal: tmpl})
			break
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unclosed placeholder in %q", tmpl)
		}
		end += open
		if end == open+1 {
			return nil, fmt.Errorf("empty placeholder in %q", tmpl)
		}
		if open > 0 {
			parts = append(parts, pathPart{literal: tmpl[:open]})
		}
		parts = append(parts, pathPart{param: tmpl[open+1 : end]})
		tmpl = tmpl[end+1:]
	}
	return parts, nil
}

// expand substitutes fmt.Sprint(params[name]) for every placeholder. Missing
// params render as "<nil>".
func (t pathTemplate) expand(params map[string]any) string {
	var sb strings.Builder
	for _, p := range t {
		if p.param == "" {
			sb.WriteString(p.literal)
			continue
		}
		sb.WriteString(fmt.Sprint(params[p.param]))
	}
	return sb.String()
}
