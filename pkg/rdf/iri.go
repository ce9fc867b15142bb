package rdf

import "strings"

// ResolveIRI resolves ref against base. Hierarchical bases (scheme:/ or
// scheme://) follow RFC 3986 section 5.2; opaque bases such as urn: ones
// are joined by concatenation. Absolute refs and an empty base return ref.
func ResolveIRI(base, ref string) string {
	if base == "" || hasScheme(ref) {
		return ref
	}
	colon := strings.IndexByte(base, ':')
	if colon < 0 {
		return base + ref
	}
	scheme, rest := base[:colon+1], base[colon+1:]
	if !strings.HasPrefix(rest, "/") {
		return base + ref
	}
	rest, _, _ = strings.Cut(rest, "#")

	authority := ""
	if strings.HasPrefix(rest, "//") {
		if end := strings.IndexAny(rest[2:], "/?"); end >= 0 {
			authority, rest = rest[:end+2], rest[end+2:]
		} else {
			authority, rest = rest, ""
		}
	}
	path, query, hasQuery := strings.Cut(rest, "?")
	if hasQuery {
		query = "?" + query
	}
	prefix := scheme + authority

	switch {
	case ref == "":
		return prefix + path + query
	case strings.HasPrefix(ref, "//"):
		return scheme + ref
	case strings.HasPrefix(ref, "#"):
		return prefix + path + query + ref
	case strings.HasPrefix(ref, "?"):
		return prefix + path + ref
	}

	refPath, tail := ref, ""
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		refPath, tail = ref[:i], ref[i:]
	}
	if !strings.HasPrefix(refPath, "/") {
		if i := strings.LastIndexByte(path, '/'); i >= 0 {
			refPath = path[:i+1] + refPath
		} else if authority != "" {
			refPath = "/" + refPath
		}
	}
	return prefix + removeDotSegments(refPath) + tail
}

// hasScheme reports whether iri starts with scheme ":"
func hasScheme(iri string) bool {
	for i := 0; i < len(iri); i++ {
		c := iri[i]
		switch {
		case c == ':':
			return i > 0
		case isLetter(c):
		case i > 0 && ((c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return false
}

// removeDotSegments drops "." and ".." path segments (RFC 3986 5.2.4)
func removeDotSegments(path string) string {
	if !strings.Contains(path, ".") {
		return path
	}
	segments := strings.Split(path, "/")
	out := make([]string, 0, len(segments))
	last := len(segments) - 1
	for i, seg := range segments {
		switch seg {
		case ".":
			if i == last {
				out = append(out, "")
			}
		case "..":
			if len(out) > 1 {
				out = out[:len(out)-1]
			}
			if i == last {
				out = append(out, "")
			}
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}
