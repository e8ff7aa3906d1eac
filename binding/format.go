package binding

import (
	"encoding/json"
	"regexp"
	"strings"
)

// exprPattern matches ${...} placeholders. Escaped occurrences (\${...}) are
// filtered out by inspecting the preceding byte, since Go's regexp has no
// lookbehind.
var exprPattern = regexp.MustCompile(`\$\{([^}]*)\}`)

// Format expands ${expression} placeholders in a template string.
//
// Expressions starting with "/" resolve against root; all others resolve
// against scope. Unresolved expressions become the empty string. After
// substitution, every literal \${ is unescaped to ${, including in templates
// with no placeholders at all. An empty template yields an empty string.
func Format(template string, root, scope any) string {
	if template == "" {
		return ""
	}

	var b strings.Builder
	last := 0
	for _, m := range exprPattern.FindAllStringSubmatchIndex(template, -1) {
		start, end := m[0], m[1]
		if start > 0 && template[start-1] == '\\' {
			continue // escaped: leave the literal text for unescaping below
		}
		b.WriteString(template[last:start])
		value, ok := resolveExpression(template[m[2]:m[3]], root, scope)
		b.WriteString(coerceString(value, ok))
		last = end
	}
	b.WriteString(template[last:])

	return strings.ReplaceAll(b.String(), `\${`, "${")
}

// FormatValue applies Format to string values, passing everything else
// through unchanged. A nil value yields nil, so renderers can distinguish an
// absent template from an empty one.
func FormatValue(value any, root, scope any) any {
	if value == nil {
		return nil
	}
	if s, ok := value.(string); ok {
		return Format(s, root, scope)
	}
	return value
}

func resolveExpression(expression string, root, scope any) (any, bool) {
	if expression == "" {
		return nil, false
	}

	if strings.HasPrefix(expression, "/") {
		if root == nil {
			return nil, false
		}
		return Resolve(root, expression)
	}

	if scope == nil {
		return nil, false
	}
	return ResolveRelative(scope, expression)
}

// coerceString converts a resolved value to its string form: strings pass
// through, booleans become "true"/"false", nil and unresolved become empty,
// and numbers, objects and arrays use their canonical JSON text.
func coerceString(value any, ok bool) string {
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		text, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(text)
	}
}
