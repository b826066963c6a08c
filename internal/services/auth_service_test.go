package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"opinions/internal/models"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeMailer, *fakeGoogle, *clock) {
	t.Helper()
	conn := newTestDB(t)
	clk := newClock()
	mailer := newFakeMailer()
	google := &fakeGoogle{identities: map[string]*GoogleIdentity{}}
	tokens := NewTokenService("jwt-secret", time.Hour)
	tokens.now = clk.Now

	s := NewAuthService(conn, mailer, google, tokens)
	s.now = clk.Now
	return s, mailer, google, clk
}

func countUsers(t *testing.T, s *AuthService) int64 {
	t.Helper()
	var n int64
	if err := s.db.Model(&models.User{}).Count(&n).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	return n
}

func TestSendOTPCreatesUserOnce(t *testing.T) {
	s, mailer, _, _ := newAuthFixture(t)
	ctx := context.Background()

	if err := s.SendOTP(ctx, "  Alice@Example.com "); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	if err := s.SendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("second SendOTP: %v", err)
	}
	if n := countUsers(t, s); n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}

	var user models.User
	s.db.First(&user)
	if user.Email != "alice@example.com" || user.Username != "alice" || user.IsSetupComplete {
		t.Errorf("unexpected user %+v", user)
	}
	if code := mailer.Code("alice@example.com"); len(code) != OTPLength {
		t.Errorf("expected %d digit code, got %q", OTPLength, code)
	}
	if user.OTPHash == "" || user.OTPHash == mailer.Code("alice@example.com") {
		t.Error("expected code stored as hash")
	}
}

func TestSendOTPValidatesEmail(t *testing.T) {
	s, _, _, _ := newAuthFixture(t)
	for _, email := range []string{"", "not-an-email", "Bob <bob@example.com>"} {
		if err := s.SendOTP(context.Background(), email); !errors.Is(err, ErrValidation) {
			t.Errorf("SendOTP(%q): expected validation error, got %v", email, err)
		}
	}
}

func TestSendOTPMailFailure(t *testing.T) {
	s, mailer, _, _ := newAuthFixture(t)
	mailer.err = ErrMailDisabled

	err := s.SendOTP(context.Background(), "alice@example.com")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestVerifyOTP(t *testing.T) {
	s, mailer, _, _ := newAuthFixture(t)
	ctx := context.Background()
	if err := s.SendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	code := mailer.Code("alice@example.com")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	if _, err := s.VerifyOTP(ctx, "alice@example.com", wrong); !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected invalid OTP for wrong code, got %v", err)
	}

	res, err := s.VerifyOTP(ctx, "ALICE@example.com", code)
	if err != nil {
		t.Fatalf("VerifyOTP: %v", err)
	}
	if !res.User.IsSetupComplete {
		t.Error("expected setup complete after verify")
	}
	userID, err := s.tokens.Parse(res.Token)
	if err != nil || userID != res.User.ID {
		t.Fatalf("token does not resolve to user: %v %s", err, userID)
	}

	// 验证码只能用一次
	if _, err := s.VerifyOTP(ctx, "alice@example.com", code); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("expected consumed code to fail, got %v", err)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	s, mailer, _, clk := newAuthFixture(t)
	ctx := context.Background()
	if err := s.SendOTP(ctx, "alice@example.com"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}

	clk.Advance(OTPTTL + time.Second)
	_, err := s.VerifyOTP(ctx, "alice@example.com", mailer.Code("alice@example.com"))
	if !errors.Is(err, ErrInvalidOTP) {
		t.Fatalf("expected expired code to fail, got %v", err)
	}
	if err.Error() != "Invalid or expired OTP" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestVerifyOTPUnknownEmail(t *testing.T) {
	s, _, _, _ := newAuthFixture(t)
	if _, err := s.VerifyOTP(context.Background(), "ghost@example.com", "123456"); !errors.Is(err, ErrInvalidOTP) {
		t.Errorf("expected invalid OTP, got %v", err)
	}
}

func TestGoogleLoginCreatesUser(t *testing.T) {
	s, _, google, _ := newAuthFixture(t)
	google.identities["id-token"] = &GoogleIdentity{Subject: "g-1", Email: "Carol@Example.com", Name: "Carol"}

	res, err := s.GoogleLogin(context.Background(), GoogleCredentials{IDToken: "id-token"})
	if err != nil {
		t.Fatalf("GoogleLogin: %v", err)
	}
	if res.User.Email != "carol@example.com" || res.User.Username != "Carol" {
		t.Errorf("unexpected user %+v", res.User)
	}
	if !res.User.IsSetupComplete || res.User.GoogleID == nil || *res.User.GoogleID != "g-1" {
		t.Errorf("expected linked, complete user, got %+v", res.User)
	}

	// 再次登录不重复创建
	if _, err := s.GoogleLogin(context.Background(), GoogleCredentials{Code: "id-token"}); err != nil {
		t.Fatalf("second GoogleLogin: %v", err)
	}
	if n := countUsers(t, s); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestGoogleLoginLinksExistingUser(t *testing.T) {
	s, _, google, _ := newAuthFixture(t)
	ctx := context.Background()
	if err := s.SendOTP(ctx, "dave@example.com"); err != nil {
		t.Fatalf("SendOTP: %v", err)
	}
	google.identities["tok"] = &GoogleIdentity{Subject: "g-dave", Email: "dave@example.com"}

	res, err := s.GoogleLogin(ctx, GoogleCredentials{IDToken: "tok"})
	if err != nil {
		t.Fatalf("GoogleLogin: %v", err)
	}
	if res.User.Username != "dave" {
		t.Errorf("expected existing username kept, got %s", res.User.Username)
	}

	var stored models.User
	s.db.First(&stored, "email = ?", "dave@example.com")
	if stored.GoogleID == nil || *stored.GoogleID != "g-dave" {
		t.Errorf("expected google id linked, got %v", stored.GoogleID)
	}
	if n := countUsers(t, s); n != 1 {
		t.Errorf("expected 1 user, got %d", n)
	}
}

func TestGoogleLoginErrors(t *testing.T) {
	s, _, google, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := s.GoogleLogin(ctx, GoogleCredentials{}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error without credentials, got %v", err)
	}
	if _, err := s.GoogleLogin(ctx, GoogleCredentials{IDToken: "unknown"}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected validation error for bad token, got %v", err)
	}

	google.err = newError(ErrUpstream, "Google unavailable")
	if _, err := s.GoogleLogin(ctx, GoogleCredentials{IDToken: "x"}); !errors.Is(err, ErrUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestCurrentUser(t *testing.T) {
	s, _, google, _ := newAuthFixture(t)
	google.identities["tok"] = &GoogleIdentity{Subject: "g", Email: "e@example.com"}
	res, _ := s.GoogleLogin(context.Background(), GoogleCredentials{IDToken: "tok"})

	u, err := s.CurrentUser(context.Background(), res.User.ID)
	if err != nil || u.ID != res.User.ID {
		t.Fatalf("CurrentUser: %v", err)
	}
	if _, err := s.CurrentUser(context.Background(), "missing"); !errors.Is(err, ErrAuth) {
		t.Errorf("expected auth error for missing user, got %v", err)
	}
}
