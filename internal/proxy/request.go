package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/devis-portal/gateway/internal/auth"
)

// LoginRequest is checked locally for presence only; whether the
// credentials are any good is the backend's answer to relay.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// BindParams resolves the route's path parameters with get. Named (:x)
// parameters must be alphanumdash; catch-all (*x) values may not contain
// dot segments.
func (r Route) BindParams(get func(name string) string, validate *validator.Validate) (map[string]string, error) {
	params := make(map[string]string)
	for _, p := range placeholders(r.Path) {
		value := get(p[1:])
		if p[0] == ':' {
			if err := validate.Var(value, "required,alphanumdash"); err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidParam, p[1:])
			}
		} else if hasDotSegment(value) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidParam, p[1:])
		}
		params[p] = value
	}
	return params, nil
}

func hasDotSegment(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// MaxBodyBytes caps the request body read before forwarding
const MaxBodyBytes = 10 << 20

// Prepare builds the outbound request for route from the browser request.
// The body is forwarded byte for byte once it passes local checks.
func Prepare(route Route, r *http.Request, params map[string]string, validate *validator.Validate) (Outbound, error) {
	session := auth.FromRequest(r)
	if route.Auth && !session.Authenticated() {
		return Outbound{}, ErrMissingToken
	}

	var body []byte
	if r.Body != nil {
		data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return Outbound{}, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidBody, tooLarge.Limit)
			}
			return Outbound{}, fmt.Errorf("%w: %v", ErrInvalidBody, err)
		}
		body = data
	}

	if err := checkBody(route.Body, body, validate); err != nil {
		return Outbound{}, err
	}

	header := make(http.Header)
	for _, key := range ForwardedHeaders {
		for _, v := range r.Header.Values(key) {
			header.Add(key, v)
		}
	}
	if session.Authenticated() {
		header.Set("Authorization", session.BearerHeader())
	}

	method := r.Method
	if route.Method != MethodAny {
		method = route.Method
	}

	return Outbound{
		Method:   method,
		Path:     route.UpstreamPath(params),
		RawQuery: r.URL.RawQuery,
		Header:   header,
		Body:     body,
	}, nil
}

func checkBody(mode string, body []byte, validate *validator.Validate) error {
	switch mode {
	case BodyJSON:
		if len(strings.TrimSpace(string(body))) > 0 && !json.Valid(body) {
			return fmt.Errorf("%w: malformed JSON", ErrInvalidBody)
		}
	case BodyLogin:
		var req LoginRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return fmt.Errorf("%w: malformed JSON", ErrInvalidBody)
		}
		if err := validate.Struct(req); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidBody, describe(err))
		}
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, ", ")
}

// Relay copies the headers the browser should see from a backend response
func Relay(up *Upstream, route Route, dst http.Header) {
	for _, key := range RelayedHeaders {
		if v := up.Header.Get(key); v != "" {
			dst.Set(key, v)
		}
	}
	if route.RelayCookies {
		for _, c := range up.Header.Values("Set-Cookie") {
			dst.Add("Set-Cookie", c)
		}
	}
}

// NewValidator returns a validator with the gateway's custom rules
func NewValidator() *validator.Validate {
	validate := validator.New()

	// Allow alphanumeric, hyphens, and underscores only (safe for backend paths)
	validate.RegisterValidation("alphanumdash", func(fl validator.FieldLevel) bool {
		for _, char := range fl.Field().String() {
			if !((char >= 'a' && char <= 'z') ||
				(char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9') ||
				char == '-' ||
				char == '_') {
				return false
			}
		}
		return true
	})

	return validate
}
