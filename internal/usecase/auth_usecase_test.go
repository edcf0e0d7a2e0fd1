package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"imagulator/internal/delivery/dto"
	"imagulator/internal/infrastructure/session"
	repoimpl "imagulator/internal/repository"
	"imagulator/pkg/jwt"
)

func newAuthFixture(t *testing.T) (AuthUsecase, *jwt.JWTService, session.Store) {
	t.Helper()
	db := newTestDB(t)
	jwtService := newTestJWTService()
	sessions := session.NewMemoryStore()

	uc := NewAuthUsecase(db, newTestLogger(), repoimpl.NewUserRepository(), jwtService, sessions)
	return uc, jwtService, sessions
}

func signupRequest(username, email string) *dto.SignupRequest {
	return &dto.SignupRequest{
		Username: username,
		Email:    email,
		Password: "correct-horse-battery",
	}
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	uc, jwtService, sessions := newAuthFixture(t)

	user, tokens, err := uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org"))
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if user.Username != "dr_lee" || user.Role != "doctor" {
		t.Errorf("user = %+v", user)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("signup returned empty tokens")
	}

	// The session is open immediately after signup.
	claims, err := jwtService.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if claims.TokenType != jwt.AccessToken {
		t.Errorf("token type = %s", claims.TokenType)
	}
	if ok, _ := sessions.Exists(ctx, session.AccessToken, claims.UserID, claims.TokenID); !ok {
		t.Error("access session not recorded after signup")
	}

	// Login by username and by email.
	for _, identifier := range []string{"dr_lee", "lee@example.org"} {
		got, err := uc.Login(ctx, &dto.LoginRequest{Identifier: identifier, Password: "correct-horse-battery"})
		if err != nil {
			t.Fatalf("Login(%s): %v", identifier, err)
		}
		if got.AccessToken == "" {
			t.Errorf("Login(%s) returned no access token", identifier)
		}
	}
}

func TestLoginFailsClosed(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newAuthFixture(t)

	if _, _, err := uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org")); err != nil {
		t.Fatal(err)
	}

	_, err := uc.Login(ctx, &dto.LoginRequest{Identifier: "dr_lee", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}

	_, err = uc.Login(ctx, &dto.LoginRequest{Identifier: "nobody", Password: "whatever"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown identifier: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignupDuplicates(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newAuthFixture(t)

	if _, _, err := uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org")); err != nil {
		t.Fatal(err)
	}

	_, _, err := uc.Signup(ctx, signupRequest("dr_lee", "other@example.org"))
	if !errors.Is(err, ErrUsernameAlreadyExists) {
		t.Errorf("duplicate username: err = %v, want ErrUsernameAlreadyExists", err)
	}

	_, _, err = uc.Signup(ctx, signupRequest("dr_kim", "lee@example.org"))
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("duplicate email: err = %v, want ErrEmailAlreadyExists", err)
	}
}

// Concurrent signups with the same username must produce exactly one user;
// the unique index is the arbiter.
func TestConcurrentSignupSameUsername(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newAuthFixture(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org"))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if !errors.Is(err, ErrUsernameAlreadyExists) && !errors.Is(err, ErrEmailAlreadyExists) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d signups succeeded, want exactly 1", succeeded)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newAuthFixture(t)

	_, tokens, err := uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org"))
	if err != nil {
		t.Fatal(err)
	}

	rotated, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if rotated.AccessToken == "" || rotated.RefreshToken == "" {
		t.Fatal("rotation returned empty tokens")
	}

	// The old refresh token is single-use.
	_, err = uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("replayed refresh token: err = %v, want ErrTokenRevoked", err)
	}

	// The new one still works.
	if _, err := uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: rotated.RefreshToken}); err != nil {
		t.Fatalf("rotated refresh token rejected: %v", err)
	}
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newAuthFixture(t)

	_, tokens, err := uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token as refresh: err = %v, want ErrInvalidToken", err)
	}

	_, err = uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: err = %v, want ErrInvalidToken", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	uc, jwtService, sessions := newAuthFixture(t)

	_, tokens, err := uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org"))
	if err != nil {
		t.Fatal(err)
	}

	access, err := jwtService.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := jwtService.ValidateToken(tokens.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}

	if err := uc.Logout(ctx, access.UserID, access.TokenID, refresh.TokenID); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if ok, _ := sessions.Exists(ctx, session.AccessToken, access.UserID, access.TokenID); ok {
		t.Error("access session survived logout")
	}
	// The refresh token is revoked too, so rotation must refuse it.
	_, err = uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("refresh after logout: err = %v, want ErrTokenRevoked", err)
	}
}

func TestGetCurrentUser(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newAuthFixture(t)

	created, _, err := uc.Signup(ctx, signupRequest("dr_lee", "lee@example.org"))
	if err != nil {
		t.Fatal(err)
	}

	user, err := uc.GetCurrentUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCurrentUser: %v", err)
	}
	if user.Username != "dr_lee" || user.Email != "lee@example.org" {
		t.Errorf("user = %+v", user)
	}

	if _, err := uc.GetCurrentUser(ctx, 9999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: err = %v, want ErrUserNotFound", err)
	}
}
