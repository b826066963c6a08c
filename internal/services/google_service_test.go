package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/oauth2"
)

func newGoogleTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		info := map[string]string{
			"aud":            "client-id",
			"sub":            "g-123",
			"email":          "erin@example.com",
			"email_verified": "true",
			"name":           "Erin",
		}
		switch r.URL.Query().Get("id_token") {
		case "good":
		case "other-aud":
			info["aud"] = "someone-else"
		case "unverified":
			info["email_verified"] = "false"
		case "broken":
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		default:
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(info)
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("code") != "auth-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600,"id_token":"good"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGoogleService(srv *httptest.Server) *GoogleService {
	g := NewGoogleService("client-id", "client-secret", "http://localhost/callback")
	g.tokenInfoURL = srv.URL + "/tokeninfo"
	g.oauth.Endpoint = oauth2.Endpoint{TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	g.client = srv.Client()
	return g
}

func TestVerifyIDToken(t *testing.T) {
	g := newTestGoogleService(newGoogleTestServer(t))
	ctx := context.Background()

	id, err := g.VerifyIDToken(ctx, "good")
	if err != nil {
		t.Fatalf("VerifyIDToken: %v", err)
	}
	if id.Subject != "g-123" || id.Email != "erin@example.com" || id.Name != "Erin" {
		t.Errorf("unexpected identity %+v", id)
	}

	for token, want := range map[string]error{
		"other-aud":  ErrValidation,
		"unverified": ErrValidation,
		"garbage":    ErrValidation,
		"broken":     ErrUpstream,
	} {
		if _, err := g.VerifyIDToken(ctx, token); !errors.Is(err, want) {
			t.Errorf("%s: expected %v, got %v", token, want, err)
		}
	}
}

func TestVerifyIDTokenNotConfigured(t *testing.T) {
	g := NewGoogleService("", "", "")
	if _, err := g.VerifyIDToken(context.Background(), "x"); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestExchange(t *testing.T) {
	g := newTestGoogleService(newGoogleTestServer(t))
	ctx := context.Background()

	id, err := g.Exchange(ctx, "auth-code", "")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if id.Subject != "g-123" {
		t.Errorf("unexpected identity %+v", id)
	}

	if _, err := g.Exchange(ctx, "bad-code", "http://client/cb"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for bad code, got %v", err)
	}
}
