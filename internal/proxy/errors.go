package proxy

import (
	"errors"
	"net/http"
)

var (
	ErrMissingToken        = errors.New("missing token cookie")
	ErrInvalidBody         = errors.New("invalid request body")
	ErrInvalidParam        = errors.New("invalid path parameter")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
)

// Envelope is the JSON shape of every error produced locally
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Classify maps an error to the status code and message sent to the browser
func Classify(err error) (int, Envelope) {
	switch {
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized, Envelope{Message: "Not authenticated"}
	case errors.Is(err, ErrInvalidBody), errors.Is(err, ErrInvalidParam):
		return http.StatusBadRequest, Envelope{Message: err.Error()}
	case errors.Is(err, ErrUpstreamUnreachable):
		return http.StatusBadGateway, Envelope{Message: "Backend unreachable"}
	default:
		return http.StatusInternalServerError, Envelope{Message: "Internal server error"}
	}
}
