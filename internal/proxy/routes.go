package proxy

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Body validation modes
const (
	BodyNone  = ""
	BodyJSON  = "json"
	BodyLogin = "login"
)

// MethodAny registers a route for every HTTP method
const MethodAny = "ANY"

// Route describes one browser-facing endpoint and the backend path it forwards to.
// Upstream may reference the route's path parameters as :name or *name.
type Route struct {
	Name         string `yaml:"name" validate:"required"`
	Method       string `yaml:"method" validate:"required,oneof=GET POST PUT PATCH DELETE ANY"`
	Path         string `yaml:"path" validate:"required,startswith=/api/"`
	Upstream     string `yaml:"upstream" validate:"required,startswith=/"`
	Auth         bool   `yaml:"auth"`
	RelayCookies bool   `yaml:"relay_cookies"`
	Body         string `yaml:"body" validate:"omitempty,oneof=json login"`
}

type routeFile struct {
	Routes []Route `yaml:"routes" validate:"required,min=1,dive"`
}

// DefaultRoutes is the built-in route table
func DefaultRoutes() []Route {
	return []Route{
		{Name: "login", Method: "POST", Path: "/api/login", Upstream: "/api/auth/login", RelayCookies: true, Body: BodyLogin},
		{Name: "session", Method: "GET", Path: "/api/session", Upstream: "/api/users/me", Auth: true},

		{Name: "reclamations.list", Method: "GET", Path: "/api/reclamations", Upstream: "/api/reclamations", Auth: true},
		{Name: "reclamations.create", Method: "POST", Path: "/api/reclamations", Upstream: "/api/reclamations", Auth: true, Body: BodyJSON},
		{Name: "reclamations.get", Method: "GET", Path: "/api/reclamations/:id", Upstream: "/api/reclamations/:id", Auth: true},
		{Name: "reclamations.update", Method: "PUT", Path: "/api/reclamations/:id", Upstream: "/api/reclamations/:id", Auth: true, Body: BodyJSON},
		{Name: "reclamations.delete", Method: "DELETE", Path: "/api/reclamations/:id", Upstream: "/api/reclamations/:id", Auth: true},

		{Name: "commande", Method: "POST", Path: "/api/commande", Upstream: "/api/order/client/commander", Auth: true, Body: BodyJSON},
		{Name: "order.status", Method: "GET", Path: "/api/order/status", Upstream: "/api/order/client/status", Auth: true},

		{Name: "devis", Method: MethodAny, Path: "/api/devis/*path", Upstream: "/api/devis*path", Auth: true, Body: BodyJSON},
		{Name: "admin.devis", Method: MethodAny, Path: "/api/admin/devis/*path", Upstream: "/api/admin/devis*path", Auth: true, Body: BodyJSON},
	}
}

// LoadRoutes reads a YAML route table from path
func LoadRoutes(path string, validate *validator.Validate) ([]Route, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes file: %w", err)
	}

	var file routeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse routes file: %w", err)
	}

	for i := range file.Routes {
		file.Routes[i].Method = strings.ToUpper(file.Routes[i].Method)
	}

	if err := ValidateRoutes(file.Routes, validate); err != nil {
		return nil, err
	}
	return file.Routes, nil
}

// ValidateRoutes checks field rules, duplicate registrations and that every
// upstream placeholder is bound by the local path
func ValidateRoutes(routes []Route, validate *validator.Validate) error {
	if len(routes) == 0 {
		return fmt.Errorf("route table is empty")
	}

	seen := make(map[string]string, len(routes))
	for _, r := range routes {
		if err := validate.Struct(r); err != nil {
			return fmt.Errorf("route %q: %w", r.Name, err)
		}

		key := r.Method + " " + r.Path
		if other, dup := seen[key]; dup {
			return fmt.Errorf("route %q duplicates %q (%s)", r.Name, other, key)
		}
		seen[key] = r.Name

		bound := make(map[string]bool)
		for _, p := range placeholders(r.Path) {
			bound[p] = true
		}
		for _, p := range placeholders(r.Upstream) {
			if !bound[p] {
				return fmt.Errorf("route %q: upstream placeholder %q not bound by path %s", r.Name, p, r.Path)
			}
		}
	}
	return nil
}

// UpstreamPath substitutes path parameters into the route's upstream template
func (r Route) UpstreamPath(params map[string]string) string {
	var b strings.Builder
	tmpl := r.Upstream

	for i := 0; i < len(tmpl); {
		ch := tmpl[i]
		if ch != ':' && ch != '*' {
			b.WriteByte(ch)
			i++
			continue
		}

		j := i + 1
		for j < len(tmpl) && isNameByte(tmpl[j]) {
			j++
		}
		value := params[tmpl[i:j]]
		if ch == ':' {
			b.WriteString(url.PathEscape(value))
		} else {
			b.WriteString(escapeSegments(value))
		}
		i = j
	}
	return b.String()
}

func placeholders(path string) []string {
	var out []string
	for i := 0; i < len(path); i++ {
		if path[i] != ':' && path[i] != '*' {
			continue
		}
		j := i + 1
		for j < len(path) && isNameByte(path[j]) {
			j++
		}
		out = append(out, path[i:j])
		i = j - 1
	}
	return out
}

func isNameByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func escapeSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
