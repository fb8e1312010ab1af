package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"dockcall-backend/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

const testJWTSecret = "test-secret"

func newTestAuthService(env *testEnv) *AuthService {
	return NewAuthService(zerolog.Nop(), testJWTSecret, 12, map[model.UserRole]string{
		model.RoleMaster:    "master123",
		model.RoleAdm:       "adm123",
		model.RoleMotorista: "123",
	}, env.actionLog)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name     string
		password string
		wantRole model.UserRole
	}{
		{name: "senha master", password: "master123", wantRole: model.RoleMaster},
		{name: "senha adm", password: "adm123", wantRole: model.RoleAdm},
		{name: "senha motorista", password: "123", wantRole: model.RoleMotorista},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			auth := newTestAuthService(env)

			result, err := auth.Login(ctx, tc.password)
			if err != nil {
				t.Fatalf("Login: %v", err)
			}

			if result.Role != tc.wantRole {
				t.Errorf("role = %s, want %s", result.Role, tc.wantRole)
			}
			if result.Capabilities != model.CapabilitiesForRole(tc.wantRole) {
				t.Errorf("capabilities = %+v, want the %s set", result.Capabilities, tc.wantRole)
			}
			if result.ExpiresAt.Before(time.Now().Add(11 * time.Hour)) {
				t.Errorf("expiresAt = %v, want about 12h ahead", result.ExpiresAt)
			}

			claims := parseSessionToken(t, result.Token)
			if claims["type"] != string(model.TokenTypeSession) {
				t.Errorf("token type = %v, want session", claims["type"])
			}
			if claims["role"] != string(tc.wantRole) {
				t.Errorf("token role = %v, want %s", claims["role"], tc.wantRole)
			}
		})
	}
}

func TestLoginInvalidPassword(t *testing.T) {
	env := newTestEnv()
	auth := newTestAuthService(env)

	_, err := auth.Login(context.Background(), "senha-errada")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginAndLogoutAreAudited(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	auth := newTestAuthService(env)

	if _, err := auth.Login(ctx, "master123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	auth.Logout(ctx, model.RoleMaster)

	entries, err := env.actionLog.List(ctx, "", "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want login and logout", len(entries))
	}

	actions := map[string]bool{}
	for _, e := range entries {
		actions[e.Action] = true
		if e.UserRole != model.RoleMaster {
			t.Errorf("entry %s role = %s, want master", e.ID, e.UserRole)
		}
	}
	if !actions[model.ActionLogin] || !actions[model.ActionLogout] {
		t.Errorf("actions = %v, want login and logout recorded", actions)
	}
}

func parseSessionToken(t *testing.T, tokenString string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("claims type %T, want MapClaims", token.Claims)
	}
	return claims
}
