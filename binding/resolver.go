// Package binding resolves JSON Pointer (RFC 6901) paths against a surface
// data model and expands ${...} interpolation expressions in template strings.
//
// Paths are absolute ("/user/profile/name", rooted at the document) or
// relative ("firstName", rooted at a scope value such as a list item). All
// functions are pure: data models are treated as persistent values and
// SetValueAtPath returns a new document rather than mutating its input.
package binding

import (
	"strconv"
	"strings"
)

// Resolve walks a JSON Pointer path against a root value. The empty path
// returns the root itself; a path without a leading slash is resolved as a
// relative path. The second return value reports whether the path resolved.
func Resolve(root any, path string) (any, bool) {
	if path == "" {
		return root, true
	}
	if !strings.HasPrefix(path, "/") {
		return ResolveRelative(root, path)
	}
	return walk(root, splitPath(path))
}

// ResolveRelative walks a path against a scope value, ignoring any leading
// slash convention.
func ResolveRelative(scope any, relativePath string) (any, bool) {
	return walk(scope, splitPath(relativePath))
}

// SetValueAtPath returns a new document with value placed at path, creating
// intermediate objects as needed and substituting an object for any
// non-object encountered along the way. The input document is not modified;
// root may be nil. A root path ("" or "/") returns value itself.
func SetValueAtPath(root any, path string, value any) any {
	segments := splitPath(path)
	if len(segments) == 0 {
		return value
	}
	return setPath(root, segments, value)
}

func setPath(current any, segments []string, value any) any {
	if len(segments) == 0 {
		return value
	}

	segment := unescape(segments[0])

	obj, _ := current.(map[string]any)
	next := make(map[string]any, len(obj)+1)
	for k, v := range obj {
		next[k] = v
	}
	next[segment] = setPath(obj[segment], segments[1:], value)
	return next
}

func walk(current any, segments []string) (any, bool) {
	for _, raw := range segments {
		segment := unescape(raw)

		switch v := current.(type) {
		case map[string]any:
			child, ok := v[segment]
			if !ok {
				return nil, false
			}
			current = child
		case []any:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(v) {
				return nil, false
			}
			current = v[index]
		default:
			return nil, false
		}
	}
	return current, true
}

// splitPath splits on "/" and drops empty segments, so a leading slash is
// ignored and "/" addresses the root.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := parts[:0]
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// unescape applies RFC 6901 unescaping: ~1 becomes "/" and ~0 becomes "~".
func unescape(segment string) string {
	if !strings.Contains(segment, "~") {
		return segment
	}
	segment = strings.ReplaceAll(segment, "~1", "/")
	return strings.ReplaceAll(segment, "~0", "~")
}
