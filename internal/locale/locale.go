// Package locale keeps every page path prefixed with one of the portal's
// supported locales.
package locale

import (
	"context"
	"net/http"
	pathpkg "path"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a supported path locale segment
type Locale string

const (
	French  Locale = "fr"
	English Locale = "en"
	Arabic  Locale = "ar"

	// Default is used when nothing on the request selects a locale
	Default = French

	// CookieName stores the user's locale preference
	CookieName = "NEXT_LOCALE"
)

var supported = []Locale{French, English, Arabic}

var matcher = language.NewMatcher([]language.Tag{
	language.French,
	language.English,
	language.Arabic,
})

// excludedPrefixes are never locale-prefixed
var excludedPrefixes = []string{"/api", "/health", "/metrics", "/static", "/_next"}

var excludedFiles = map[string]bool{
	"/favicon.ico": true,
	"/robots.txt":  true,
}

// Supported returns the supported locales in preference order
func Supported() []Locale {
	out := make([]Locale, len(supported))
	copy(out, supported)
	return out
}

// Parse returns the locale for a path segment or cookie value
func Parse(value string) (Locale, bool) {
	l := Locale(strings.ToLower(strings.TrimSpace(value)))
	for _, s := range supported {
		if l == s {
			return l, true
		}
	}
	return "", false
}

// Split separates a leading locale segment from the rest of the path.
// rest always starts with "/".
func Split(path string) (Locale, string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	segment, rest, _ := strings.Cut(trimmed, "/")

	l, ok := Parse(segment)
	if !ok || segment != string(l) {
		return "", path, false
	}
	return l, "/" + rest, true
}

// Prefix builds the locale-qualified form of path
func Prefix(l Locale, path string) string {
	if path == "" || path == "/" {
		return "/" + string(l)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "/" + string(l) + path
}

// Clean returns the canonical form of a request path: repeated slashes and
// dot segments removed, a trailing slash kept.
func Clean(path string) string {
	if path == "" {
		return "/"
	}
	cleaned := pathpkg.Clean("/" + path)
	if strings.HasSuffix(path, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// Excluded reports whether path bypasses locale handling
func Excluded(path string) bool {
	if excludedFiles[path] {
		return true
	}
	for _, prefix := range excludedPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// Resolve picks the locale for a request whose path carries none:
// preference cookie, then Accept-Language, then Default.
func Resolve(r *http.Request) Locale {
	if r == nil {
		return Default
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		if l, ok := Parse(cookie.Value); ok {
			return l
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := matcher.Match(tags...)
			if confidence != language.No {
				return supported[index]
			}
		}
	}

	return Default
}

type contextKey struct{}

// WithLocale stores l on ctx
func WithLocale(ctx context.Context, l Locale) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the request locale, or Default when none was stored
func FromContext(ctx context.Context) Locale {
	if l, ok := ctx.Value(contextKey{}).(Locale); ok {
		return l
	}
	return Default
}
