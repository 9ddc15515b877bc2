package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForward_RelaysAnyStatusAndBody(t *testing.T) {
	statuses := []int{
		http.StatusOK,
		http.StatusCreated,
		http.StatusNoContent,
		http.StatusFound,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusConflict,
		http.StatusUnprocessableEntity,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			body := ""
			if status != http.StatusNoContent {
				body = `{"status":` + http.StatusText(status)[:1] + `}`
			}
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if status == http.StatusFound {
					w.Header().Set("Location", "/elsewhere")
				}
				w.WriteHeader(status)
				_, _ = io.WriteString(w, body)
			}))
			defer backend.Close()

			f := NewForwarder(backend.URL, 5*time.Second)
			up, err := f.Forward(context.Background(), Outbound{Method: http.MethodGet, Path: "/api/x"})
			require.NoError(t, err)
			assert.Equal(t, status, up.StatusCode)
			assert.Equal(t, body, string(up.Body))
		})
	}
}

func TestForward_SendsMethodPathQueryHeadersBody(t *testing.T) {
	var (
		gotMethod, gotPath, gotQuery, gotAuth, gotBody string
	)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer backend.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer tok")

	f := NewForwarder(backend.URL, 5*time.Second)
	up, err := f.Forward(context.Background(), Outbound{
		Method:   http.MethodPut,
		Path:     "/api/reclamations/5",
		RawQuery: "notify=1&lang=fr",
		Header:   header,
		Body:     []byte(`{"statut":"traitée"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, up.StatusCode)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/reclamations/5", gotPath)
	assert.Equal(t, "notify=1&lang=fr", gotQuery)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, `{"statut":"traitée"}`, gotBody)
}

func TestForward_Unreachable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	f := NewForwarder(url, time.Second)
	_, err := f.Forward(context.Background(), Outbound{Method: http.MethodGet, Path: "/api/users/me"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamUnreachable))

	status, env := Classify(err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.False(t, env.Success)
}

func TestForward_Timeout(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer backend.Close()
	defer close(release)

	f := NewForwarder(backend.URL, 50*time.Millisecond)
	_, err := f.Forward(context.Background(), Outbound{Method: http.MethodGet, Path: "/slow"})
	assert.ErrorIs(t, err, ErrUpstreamUnreachable)
}

func TestForward_BadMethodIsInternal(t *testing.T) {
	f := NewForwarder("http://127.0.0.1:1", time.Second)
	_, err := f.Forward(context.Background(), Outbound{Method: "BAD METHOD", Path: "/"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUpstreamUnreachable))

	status, _ := Classify(err)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestForward_DoesNotFollowRedirects(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/other", http.StatusSeeOther)
	}))
	defer backend.Close()

	f := NewForwarder(backend.URL, time.Second)
	up, err := f.Forward(context.Background(), Outbound{Method: http.MethodPost, Path: "/api/auth/login"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, up.StatusCode)
	assert.Equal(t, "/other", up.Header.Get("Location"))
}
