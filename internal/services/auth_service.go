package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"opinions/internal/models"
	"opinions/internal/observability/metrics"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	OTPLength = 6
	OTPTTL    = 10 * time.Minute
)

// AuthResult 登录成功后返回给客户端
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// GoogleCredentials 二选一：ID token，或授权码 (+ 可选回调地址)
type GoogleCredentials struct {
	IDToken     string
	Code        string
	RedirectURI string
}

type AuthService struct {
	db     *gorm.DB
	mailer Mailer
	google GoogleProvider
	tokens *TokenService
	now    func() time.Time
	newOTP func() (string, error)
}

func NewAuthService(db *gorm.DB, mailer Mailer, google GoogleProvider, tokens *TokenService) *AuthService {
	return &AuthService{
		db:     db,
		mailer: mailer,
		google: google,
		tokens: tokens,
		now:    time.Now,
		newOTP: generateOTP,
	}
}

// generateOTP 生成 6 位数字验证码
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}

func parseEmail(raw string) (string, error) {
	email := models.NormalizeEmail(raw)
	if email == "" {
		return "", newError(ErrValidation, "Email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(ErrValidation, "Please enter a valid email")
	}
	return email, nil
}

func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// SendOTP 首次使用时创建用户，然后发送新的验证码
func (s *AuthService) SendOTP(ctx context.Context, rawEmail string) error {
	email, err := parseEmail(rawEmail)
	if err != nil {
		return err
	}
	db := withDB(ctx, s.db)

	var user models.User
	if err := db.Where(models.User{Email: email}).
		Attrs(models.User{Username: usernameFromEmail(email)}).
		FirstOrCreate(&user).Error; err != nil {
		return err
	}

	code, err := s.newOTP()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	expires := s.now().Add(OTPTTL)
	if err := db.Model(&user).Updates(map[string]any{
		"otp_hash":    string(hash),
		"otp_expires": expires,
	}).Error; err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		metrics.OTPSentTotal.WithLabelValues("failure").Inc()
		slog.ErrorContext(ctx, "otp delivery failed", "user_id", user.ID, "error", err)
		return newError(ErrUpstream, "Failed to send OTP")
	}
	metrics.OTPSentTotal.WithLabelValues("success").Inc()
	return nil
}

// VerifyOTP 校验并消费验证码
func (s *AuthService) VerifyOTP(ctx context.Context, rawEmail, code string) (*AuthResult, error) {
	email := models.NormalizeEmail(rawEmail)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return nil, newError(ErrValidation, "Email and OTP are required")
	}
	db := withDB(ctx, s.db)

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.LoginsTotal.WithLabelValues("otp", "failure").Inc()
			return nil, ErrInvalidOTP
		}
		return nil, err
	}

	if !user.HasPendingOTP(s.now()) ||
		bcrypt.CompareHashAndPassword([]byte(user.OTPHash), []byte(code)) != nil {
		metrics.LoginsTotal.WithLabelValues("otp", "failure").Inc()
		return nil, ErrInvalidOTP
	}

	// 验证码只能用一次
	user.OTPHash = ""
	user.OTPExpires = nil
	user.IsSetupComplete = true
	if err := db.Model(&user).Updates(map[string]any{
		"otp_hash":          "",
		"otp_expires":       nil,
		"is_setup_complete": true,
	}).Error; err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("otp", "success").Inc()
	return s.issue(&user)
}

// GoogleLogin 校验 Google 凭证，关联已有账号或创建新账号
func (s *AuthService) GoogleLogin(ctx context.Context, cred GoogleCredentials) (*AuthResult, error) {
	var (
		identity *GoogleIdentity
		err      error
	)
	switch {
	case cred.IDToken != "":
		identity, err = s.google.VerifyIDToken(ctx, cred.IDToken)
	case cred.Code != "":
		identity, err = s.google.Exchange(ctx, cred.Code, cred.RedirectURI)
	default:
		return nil, newError(ErrValidation, "Google token is required")
	}
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("google", "failure").Inc()
		return nil, err
	}

	user, err := s.linkGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("google", "success").Inc()
	return s.issue(user)
}

func (s *AuthService) linkGoogleUser(ctx context.Context, identity *GoogleIdentity) (*models.User, error) {
	db := withDB(ctx, s.db)
	email := models.NormalizeEmail(identity.Email)

	var user models.User
	err := db.Where("google_id = ?", identity.Subject).Or("email = ?", email).
		Order("created_at ASC").First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		username := strings.TrimSpace(identity.Name)
		if username == "" {
			username = usernameFromEmail(email)
		}
		subject := identity.Subject
		user = models.User{
			Email:           email,
			Username:        username,
			GoogleID:        &subject,
			IsSetupComplete: true,
		}
		if err := db.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}

	// 老用户，还没绑定 GoogleID 则绑定
	if user.GoogleID == nil {
		subject := identity.Subject
		user.GoogleID = &subject
		if err := db.Model(&user).Update("google_id", subject).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser 返回不含敏感字段的用户信息
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := withDB(ctx, s.db).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrAuth, "User not found")
		}
		return nil, err
	}
	return &user, nil
}
