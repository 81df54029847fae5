package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

const testOAuthClient = `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func clearOAuthEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GOOGLE_OAUTH_CLIENT_JSON",
		"GOOGLE_OAUTH_CLIENT_FILE",
		"GOOGLE_OAUTH_TOKEN_JSON",
		"GOOGLE_OAUTH_TOKEN_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestOAuthConfigFromEnv(t *testing.T) {
	clearOAuthEnv(t)
	if _, err := OAuthConfigFromEnv(); !errors.Is(err, ErrNoOAuthClient) {
		t.Fatalf("expected ErrNoOAuthClient, got %v", err)
	}

	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", "invalid-json")
	if _, err := OAuthConfigFromEnv(); err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got %v", err)
	}

	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)
	cfg, err := OAuthConfigFromEnv()
	if err != nil {
		t.Fatalf("OAuthConfigFromEnv: %v", err)
	}
	if cfg.ClientID != "id" || len(cfg.Scopes) != 1 || !strings.Contains(cfg.Scopes[0], "readonly") {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	clearOAuthEnv(t)
	path := filepath.Join(t.TempDir(), "token.json")
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", path)
	if TokenFile() != path {
		t.Fatalf("TokenFile = %q", TokenFile())
	}

	if err := SaveToken(path, &oauth2.Token{AccessToken: "abc", RefreshToken: "def"}); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("token file mode = %v", info.Mode().Perm())
	}

	tok, err := loadToken()
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if tok.AccessToken != "abc" || tok.RefreshToken != "def" {
		t.Fatalf("unexpected token: %+v", tok)
	}
}

func TestOAuthTokenSourceMissingToken(t *testing.T) {
	clearOAuthEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClient)
	_, err := oauthTokenSource(context.Background())
	if err == nil || errors.Is(err, ErrNoOAuthClient) || !strings.Contains(err.Error(), "missing oauth token") {
		t.Fatalf("expected missing token error, got %v", err)
	}
	// A configured client without a token must not fall back silently.
	if _, err := newSheetsService(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestTokenFileDefault(t *testing.T) {
	clearOAuthEnv(t)
	if TokenFile() != "token.json" {
		t.Fatalf("TokenFile = %q", TokenFile())
	}
}
