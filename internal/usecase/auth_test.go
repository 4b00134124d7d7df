package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/expensetracker/api/internal/domain"
	"github.com/expensetracker/api/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
)

// ---- fakes ----

type fakeUserRepo struct {
	create         func(ctx context.Context, u *domain.User) (*domain.User, error)
	findByID       func(ctx context.Context, id int64) (*domain.User, error)
	findByEmail    func(ctx context.Context, email string) (*domain.User, error)
	list           func(ctx context.Context) ([]*domain.User, error)
	verifyOTP      func(ctx context.Context, id int64, code string, window time.Duration) error
	rotateOTP      func(ctx context.Context, id int64, code string, generatedAt time.Time) (*domain.User, error)
	update         func(ctx context.Context, u *domain.User) (*domain.User, error)
	deleteUser     func(ctx context.Context, id int64) error
	clearStaleOTPs func(ctx context.Context, olderThan time.Duration) (int64, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.create(ctx, u)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	return r.list(ctx)
}

func (r *fakeUserRepo) VerifyOTP(ctx context.Context, id int64, code string, window time.Duration) error {
	return r.verifyOTP(ctx, id, code, window)
}

func (r *fakeUserRepo) RotateOTP(ctx context.Context, id int64, code string, generatedAt time.Time) (*domain.User, error) {
	return r.rotateOTP(ctx, id, code, generatedAt)
}

func (r *fakeUserRepo) Update(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.update(ctx, u)
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	return r.deleteUser(ctx, id)
}

func (r *fakeUserRepo) ClearStaleOTPs(ctx context.Context, olderThan time.Duration) (int64, error) {
	return r.clearStaleOTPs(ctx, olderThan)
}

type fakeEmailSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeEmailSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

// fakeCodeSource hands out codes from a fixed list.
type fakeCodeSource struct {
	codes []string
	next  int
}

func (s *fakeCodeSource) Code() (string, error) {
	if s.next >= len(s.codes) {
		return "", errors.New("out of codes")
	}
	code := s.codes[s.next]
	s.next++
	return code, nil
}

// ---- helpers ----

const testJWTKey = "test-jwt-secret-at-least-32-chars!!"

func newUsecase(repo *fakeUserRepo, sender *fakeEmailSender, codes ...string) *usecase.AuthUsecase {
	if len(codes) == 0 {
		codes = []string{"4821"}
	}
	return usecase.NewAuthUsecase(repo, sender, &fakeCodeSource{codes: codes}, []byte(testJWTKey))
}

func okSender() *fakeEmailSender {
	return &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error { return nil },
	}
}

var validInput = usecase.RegisterInput{
	Name:         "Alice",
	Email:        "A@X.com",
	PasswordHash: "secret-hash",
	Gender:       "female",
	BirthDate:    "1990-05-01",
	Phone:        "1234567890",
}

// ---- Register ----

func TestRegister_CreatesUnverifiedUserWithPendingCode(t *testing.T) {
	var captured *domain.User
	repo := &fakeUserRepo{
		create: func(_ context.Context, u *domain.User) (*domain.User, error) {
			captured = u
			created := *u
			created.ID = 1
			return &created, nil
		},
	}

	created, err := newUsecase(repo, okSender()).Register(context.Background(), validInput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1 {
		t.Errorf("id = %d, want 1", created.ID)
	}

	if captured.EmailVerified {
		t.Error("new user must start unverified")
	}
	if captured.OTP == nil || *captured.OTP != "4821" {
		t.Errorf("otp = %v, want 4821", captured.OTP)
	}
	if captured.OTPGeneratedAt == nil {
		t.Error("otp issuance timestamp not set")
	}
	if captured.Email != "a@x.com" {
		t.Errorf("email = %q, want lowercased a@x.com", captured.Email)
	}
}

func TestRegister_MissingField(t *testing.T) {
	input := validInput
	input.Phone = ""

	_, err := newUsecase(&fakeUserRepo{}, okSender()).Register(context.Background(), input)
	if !errors.Is(err, domain.ErrMissingFields) {
		t.Fatalf("want ErrMissingFields, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, _ *domain.User) (*domain.User, error) {
			return nil, domain.ErrEmailTaken
		},
	}

	_, err := newUsecase(repo, okSender()).Register(context.Background(), validInput)
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestRegister_DeliveryFailureKeepsAccount(t *testing.T) {
	repo := &fakeUserRepo{
		create: func(_ context.Context, u *domain.User) (*domain.User, error) {
			created := *u
			created.ID = 7
			return &created, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("smtp unavailable")
		},
	}

	created, err := newUsecase(repo, sender).Register(context.Background(), validInput)
	if !errors.Is(err, domain.ErrOTPDelivery) {
		t.Fatalf("want ErrOTPDelivery, got %v", err)
	}
	if created == nil || created.ID != 7 {
		t.Fatalf("created user must be returned despite delivery failure, got %v", created)
	}
}

func TestRegister_EmailsTheStoredCode(t *testing.T) {
	var storedCode, mailedBody string
	repo := &fakeUserRepo{
		create: func(_ context.Context, u *domain.User) (*domain.User, error) {
			storedCode = *u.OTP
			return u, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, body string) error {
			mailedBody = body
			return nil
		},
	}

	if _, err := newUsecase(repo, sender).Register(context.Background(), validInput); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !containsCode(mailedBody, storedCode) {
		t.Errorf("email body %q does not contain stored code %q", mailedBody, storedCode)
	}
}

// ---- VerifyOTP ----

func TestVerifyOTP_PassesThroughRepoResult(t *testing.T) {
	for _, want := range []error{
		nil,
		domain.ErrUserNotFound,
		domain.ErrOTPNotPending,
		domain.ErrOTPMismatch,
		domain.ErrOTPExpired,
	} {
		repo := &fakeUserRepo{
			verifyOTP: func(_ context.Context, _ int64, _ string, _ time.Duration) error {
				return want
			},
		}

		err := newUsecase(repo, okSender()).VerifyOTP(context.Background(), 1, "4821")
		if !errors.Is(err, want) {
			t.Errorf("want %v, got %v", want, err)
		}
	}
}

func TestVerifyOTP_UsesOneMinuteWindow(t *testing.T) {
	var capturedWindow time.Duration
	repo := &fakeUserRepo{
		verifyOTP: func(_ context.Context, _ int64, _ string, window time.Duration) error {
			capturedWindow = window
			return nil
		},
	}

	if err := newUsecase(repo, okSender()).VerifyOTP(context.Background(), 1, "4821"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedWindow != 1*time.Minute {
		t.Errorf("window = %v, want 1m", capturedWindow)
	}
}

// ---- ResendOTP ----

func TestResendOTP_RotatesAndMailsTheNewCode(t *testing.T) {
	var rotatedCode, mailedBody string
	repo := &fakeUserRepo{
		rotateOTP: func(_ context.Context, _ int64, code string, _ time.Time) (*domain.User, error) {
			rotatedCode = code
			return &domain.User{ID: 1, Email: "a@x.com", OTP: &code}, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, body string) error {
			mailedBody = body
			return nil
		},
	}

	if err := newUsecase(repo, sender, "1111").ResendOTP(context.Background(), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rotatedCode != "1111" {
		t.Errorf("rotated code = %q, want 1111", rotatedCode)
	}
	if !containsCode(mailedBody, "1111") {
		t.Errorf("email body %q does not contain code 1111", mailedBody)
	}
}

func TestResendOTP_TwiceStoresOnlyTheLatestCode(t *testing.T) {
	var stored string
	repo := &fakeUserRepo{
		rotateOTP: func(_ context.Context, _ int64, code string, _ time.Time) (*domain.User, error) {
			stored = code
			return &domain.User{ID: 1, Email: "a@x.com", OTP: &code}, nil
		},
	}

	uc := newUsecase(repo, okSender(), "1111", "2222")
	if err := uc.ResendOTP(context.Background(), 1); err != nil {
		t.Fatalf("first resend: %v", err)
	}
	if err := uc.ResendOTP(context.Background(), 1); err != nil {
		t.Fatalf("second resend: %v", err)
	}

	// The repository overwrite means the first code can no longer verify.
	if stored != "2222" {
		t.Errorf("stored code = %q, want 2222", stored)
	}
}

func TestResendOTP_AlreadyVerified(t *testing.T) {
	repo := &fakeUserRepo{
		rotateOTP: func(_ context.Context, _ int64, _ string, _ time.Time) (*domain.User, error) {
			return nil, domain.ErrAlreadyVerified
		},
	}

	err := newUsecase(repo, okSender()).ResendOTP(context.Background(), 1)
	if !errors.Is(err, domain.ErrAlreadyVerified) {
		t.Fatalf("want ErrAlreadyVerified, got %v", err)
	}
}

func TestResendOTP_DeliveryFailure(t *testing.T) {
	repo := &fakeUserRepo{
		rotateOTP: func(_ context.Context, _ int64, code string, _ time.Time) (*domain.User, error) {
			return &domain.User{ID: 1, Email: "a@x.com", OTP: &code}, nil
		},
	}
	sender := &fakeEmailSender{
		send: func(_ context.Context, _, _, _ string) error {
			return errors.New("smtp unavailable")
		},
	}

	err := newUsecase(repo, sender).ResendOTP(context.Background(), 1)
	if !errors.Is(err, domain.ErrOTPDelivery) {
		t.Fatalf("want ErrOTPDelivery, got %v", err)
	}
}

// ---- Login ----

func verifiedUser() *domain.User {
	return &domain.User{
		ID:            42,
		Name:          "Alice",
		Email:         "a@x.com",
		PasswordHash:  "secret-hash",
		EmailVerified: true,
	}
}

func TestLogin_ReturnsSignedJWT(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email != "a@x.com" {
				return nil, domain.ErrUserNotFound
			}
			return verifiedUser(), nil
		},
	}

	signed, userID, err := newUsecase(repo, okSender()).Login(context.Background(), "A@X.com", "secret-hash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}

	token, parseErr := jwt.Parse(signed, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected method")
		}
		return []byte(testJWTKey), nil
	})
	if parseErr != nil || !token.Valid {
		t.Fatalf("returned JWT is invalid: %v", parseErr)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("could not cast claims")
	}
	if claims["sub"] != "42" {
		t.Errorf("sub = %v, want %q", claims["sub"], "42")
	}
	if claims["email"] != "a@x.com" {
		t.Errorf("email = %v, want a@x.com", claims["email"])
	}
	if claims["name"] != "Alice" {
		t.Errorf("name = %v, want Alice", claims["name"])
	}

	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	if exp-iat != 3600 {
		t.Errorf("exp-iat = %v seconds, want 3600", exp-iat)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	_, _, err := newUsecase(repo, okSender()).Login(context.Background(), "nobody@x.com", "whatever")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return verifiedUser(), nil
		},
	}

	_, _, err := newUsecase(repo, okSender()).Login(context.Background(), "a@x.com", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("want ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_UnverifiedAccountNeverGetsToken(t *testing.T) {
	repo := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			u := verifiedUser()
			u.EmailVerified = false
			return u, nil
		},
	}

	token, _, err := newUsecase(repo, okSender()).Login(context.Background(), "a@x.com", "secret-hash")
	if !errors.Is(err, domain.ErrEmailNotVerified) {
		t.Fatalf("want ErrEmailNotVerified, got %v", err)
	}
	if token != "" {
		t.Fatalf("token must be empty for unverified account, got %q", token)
	}
}

func containsCode(body, code string) bool {
	return code != "" && strings.Contains(body, code)
}
