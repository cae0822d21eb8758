package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/opal-spaces/opal-backend/internal/dto"
	"github.com/opal-spaces/opal-backend/internal/models"
)

type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to   string
	body string
}

func (m *fakeMailer) Send(_ context.Context, to, _, htmlBody string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{to: to, body: htmlBody})
	return nil
}

type fakeVerifier struct {
	identity *FederatedIdentity
	err      error
}

func (v *fakeVerifier) Verify(context.Context, string) (*FederatedIdentity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T, mailer Mailer, google IdentityVerifier) (*AuthService, *gorm.DB) {
	t.Helper()
	cfg := testTokenConfig()
	cfg.FrontendURL = "https://shop.example.com"
	db := testDB(t)
	return NewAuthService(db, cfg, NewTokenService(cfg), mailer, google), db
}

func registerUser(t *testing.T, svc *AuthService, email string) {
	t.Helper()
	err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "correct horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
}

func TestRegisterCreatesUnverifiedUser(t *testing.T) {
	mailer := &fakeMailer{}
	svc, db := newTestAuthService(t, mailer, &fakeVerifier{})

	registerUser(t, svc, "ada@example.com")

	var user models.User
	if err := db.Where("email = ?", "ada@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Verified {
		t.Fatal("expected new user to be unverified")
	}
	if user.Role != models.RoleUser {
		t.Fatalf("expected role USER, got %s", user.Role)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "ada@example.com" {
		t.Fatalf("expected one verification mail to ada@example.com, got %+v", mailer.sent)
	}
	if !strings.Contains(mailer.sent[0].body, "https://shop.example.com/verify-email/") {
		t.Fatal("verification mail does not carry the verification link")
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, db := newTestAuthService(t, &fakeMailer{}, &fakeVerifier{})

	err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
		Role:      "SUPERUSER",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	var user models.User
	if err := db.Where("email = ?", "ada@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Fatalf("expected unknown role to fall back to USER, got %s", user.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeMailer{}, &fakeVerifier{})

	registerUser(t, svc, "ada@example.com")

	err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Eve",
		LastName:  "Mallory",
		Email:     "ada@example.com",
		Password:  "something else",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRollsBackWhenMailFails(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	svc, db := newTestAuthService(t, mailer, &fakeVerifier{})

	err := svc.Register(context.Background(), &dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
	})
	if err == nil {
		t.Fatal("expected register to fail when mail delivery fails")
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", "ada@example.com").Count(&count)
	if count != 0 {
		t.Fatal("expected user row to be rolled back")
	}
}

func TestLoginBeforeVerification(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeMailer{}, &fakeVerifier{})
	registerUser(t, svc, "ada@example.com")

	_, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, &fakeMailer{}, &fakeVerifier{})

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestVerifyEmailThenLogin(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestAuthService(t, mailer, &fakeVerifier{})
	registerUser(t, svc, "ada@example.com")

	token := verificationToken(t, mailer)
	if err := svc.VerifyEmail(context.Background(), token); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	// The token is single-use: a second redemption fails.
	if err := svc.VerifyEmail(context.Background(), token); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}

	session, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.AccessToken == "" || session.RefreshToken == "" {
		t.Fatal("expected both tokens on a successful login")
	}
	if session.User.Email != "ada@example.com" {
		t.Fatalf("unexpected session user %q", session.User.Email)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestAuthService(t, mailer, &fakeVerifier{})
	registerUser(t, svc, "ada@example.com")
	if err := svc.VerifyEmail(context.Background(), verificationToken(t, mailer)); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	_, err := svc.Login(context.Background(), "ada@example.com", "wrong password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGoogleLoginCreatesVerifiedUser(t *testing.T) {
	google := &fakeVerifier{identity: &FederatedIdentity{
		Email:     "grace@example.com",
		FirstName: "Grace",
		LastName:  "Hopper",
	}}
	svc, db := newTestAuthService(t, &fakeMailer{}, google)

	session, err := svc.GoogleLogin(context.Background(), "assertion")
	if err != nil {
		t.Fatalf("google login: %v", err)
	}
	if session.AccessToken == "" {
		t.Fatal("expected an access token")
	}

	var user models.User
	if err := db.Where("email = ?", "grace@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.Verified {
		t.Fatal("expected federated user to be verified")
	}
	if user.ProviderName() != "google" {
		t.Fatalf("expected provider google, got %s", user.ProviderName())
	}
	if user.Password != nil {
		t.Fatal("federated user must not carry a password hash")
	}
}

func TestGoogleLoginRejectsBadAssertion(t *testing.T) {
	google := &fakeVerifier{err: errors.New("signature mismatch")}
	svc, _ := newTestAuthService(t, &fakeMailer{}, google)

	_, err := svc.GoogleLogin(context.Background(), "garbage")
	if !errors.Is(err, ErrAssertionInvalid) {
		t.Fatalf("expected ErrAssertionInvalid, got %v", err)
	}
}

func TestGoogleLoginCannotTakeOverPasswordAccount(t *testing.T) {
	mailer := &fakeMailer{}
	google := &fakeVerifier{identity: &FederatedIdentity{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}}
	svc, _ := newTestAuthService(t, mailer, google)
	registerUser(t, svc, "ada@example.com")
	if err := svc.VerifyEmail(context.Background(), verificationToken(t, mailer)); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	_, err := svc.GoogleLogin(context.Background(), "assertion")
	var conflict *ProviderConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ProviderConflictError, got %v", err)
	}
	if conflict.Provider != "local" {
		t.Fatalf("expected the conflict to name the local provider, got %q", conflict.Provider)
	}
}

func TestGoogleLoginAdoptsUnverifiedAccount(t *testing.T) {
	google := &fakeVerifier{identity: &FederatedIdentity{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}}
	svc, db := newTestAuthService(t, &fakeMailer{}, google)
	registerUser(t, svc, "ada@example.com")

	if _, err := svc.GoogleLogin(context.Background(), "assertion"); err != nil {
		t.Fatalf("google login: %v", err)
	}

	var user models.User
	if err := db.Where("email = ?", "ada@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if !user.Verified || user.ProviderName() != "google" {
		t.Fatalf("expected verified google account, got verified=%v provider=%s",
			user.Verified, user.ProviderName())
	}
}

func TestRefreshReturnsNewAccessToken(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestAuthService(t, mailer, &fakeVerifier{})
	registerUser(t, svc, "ada@example.com")
	if err := svc.VerifyEmail(context.Background(), verificationToken(t, mailer)); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	session, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, err := svc.Refresh(context.Background(), session.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == "" {
		t.Fatal("expected an access token")
	}
}

func TestRefreshRejectsSupersededToken(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestAuthService(t, mailer, &fakeVerifier{})
	registerUser(t, svc, "ada@example.com")
	if err := svc.VerifyEmail(context.Background(), verificationToken(t, mailer)); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	first, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ada@example.com", "correct horse"); err != nil {
		t.Fatalf("second login: %v", err)
	}

	// The second login rotated the stored token, revoking the first session.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrRefreshMismatch) {
		t.Fatalf("expected ErrRefreshMismatch, got %v", err)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newTestAuthService(t, mailer, &fakeVerifier{})
	registerUser(t, svc, "ada@example.com")
	if err := svc.VerifyEmail(context.Background(), verificationToken(t, mailer)); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	session, err := svc.Login(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), session.User.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.Refresh(context.Background(), session.RefreshToken); !errors.Is(err, ErrRefreshMismatch) {
		t.Fatalf("expected ErrRefreshMismatch after logout, got %v", err)
	}
}

// verificationToken pulls the token out of the link embedded in the last
// verification mail.
func verificationToken(t *testing.T, mailer *fakeMailer) string {
	t.Helper()
	if len(mailer.sent) == 0 {
		t.Fatal("no verification mail was sent")
	}
	body := mailer.sent[len(mailer.sent)-1].body
	marker := "/verify-email/"
	i := strings.Index(body, marker)
	if i < 0 {
		t.Fatal("verification mail has no verification link")
	}
	rest := body[i+len(marker):]
	if j := strings.IndexAny(rest, "\"<"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
