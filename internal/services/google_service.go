package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleIdentity 是校验通过的 Google 用户信息
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleProvider verifies Google credentials.
type GoogleProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
	// Exchange trades an authorization code for an identity. An empty
	// redirectURI uses the configured callback.
	Exchange(ctx context.Context, code, redirectURI string) (*GoogleIdentity, error)
	AuthCodeURL(state string) string
}

type GoogleService struct {
	oauth        *oauth2.Config
	client       *http.Client
	tokenInfoURL string
}

func NewGoogleService(clientID, clientSecret, redirectURL string) *GoogleService {
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		client:       &http.Client{Timeout: 10 * time.Second},
		tokenInfoURL: googleTokenInfoURL,
	}
}

// AuthCodeURL 生成跳转 Google 的授权地址
func (g *GoogleService) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// tokenInfo tokeninfo 接口返回的字段都是字符串
type tokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

func (g *GoogleService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if g.oauth.ClientID == "" {
		return nil, newError(ErrUpstream, "Google login is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.tokenInfoURL+"?id_token="+url.QueryEscape(idToken), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: tokeninfo request: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest {
		return nil, newError(ErrValidation, "Invalid Google token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo status %d", ErrUpstream, resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode tokeninfo: %v", ErrUpstream, err)
	}
	if info.Aud != g.oauth.ClientID {
		return nil, newError(ErrValidation, "Google token was issued for another application")
	}
	if info.Sub == "" || info.Email == "" || info.EmailVerified != "true" {
		return nil, newError(ErrValidation, "Google email is not verified")
	}

	name := info.Name
	if name == "" {
		name = info.GivenName
	}
	return &GoogleIdentity{Subject: info.Sub, Email: info.Email, Name: name}, nil
}

func (g *GoogleService) Exchange(ctx context.Context, code, redirectURI string) (*GoogleIdentity, error) {
	cfg := *g.oauth
	if redirectURI != "" {
		cfg.RedirectURL = redirectURI
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil && re.Response.StatusCode < http.StatusInternalServerError {
			return nil, newError(ErrValidation, "Invalid Google authorization code")
		}
		return nil, fmt.Errorf("%w: code exchange: %v", ErrUpstream, err)
	}

	idToken, _ := token.Extra("id_token").(string)
	if idToken == "" {
		return nil, fmt.Errorf("%w: no id_token in Google response", ErrUpstream)
	}
	return g.VerifyIDToken(ctx, idToken)
}
