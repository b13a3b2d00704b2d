package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dispatch", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func TestAuthenticator_NoKeysIsOpen(t *testing.T) {
	a := NewAuthenticator(nil)
	if !a.IsEditor(authRequest("")) {
		t.Error("expected open mode with no configured keys")
	}

	a = NewAuthenticator([]string{""})
	if !a.IsEditor(authRequest("")) {
		t.Error("blank keys must not enable auth")
	}
}

func TestAuthenticator_BearerMatching(t *testing.T) {
	a := NewAuthenticator([]string{"editor-key"})

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid key", "Bearer editor-key", true},
		{"wrong key", "Bearer other", false},
		{"missing header", "", false},
		{"wrong scheme", "Basic editor-key", false},
		{"bare token", "editor-key", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.IsEditor(authRequest(tt.header)); got != tt.want {
				t.Errorf("IsEditor = %v, want %v", got, tt.want)
			}
		})
	}
}
