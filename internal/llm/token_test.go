package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGitHubToken_Env(t *testing.T) {
	t.Setenv("STINT_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "gh-env")

	token, err := LoadGitHubToken()
	if err != nil {
		t.Fatalf("LoadGitHubToken failed: %v", err)
	}
	if token != "gh-env" {
		t.Errorf("token = %q, want gh-env", token)
	}

	t.Setenv("STINT_GITHUB_TOKEN", "stint-env")
	token, _ = LoadGitHubToken()
	if token != "stint-env" {
		t.Errorf("token = %q, want stint-env to take precedence", token)
	}
}

func TestLoadGitHubToken_CopilotFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STINT_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("XDG_CONFIG_HOME", dir)

	if _, err := LoadGitHubToken(); !errors.Is(err, ErrGitHubTokenNotFound) {
		t.Fatalf("expected ErrGitHubTokenNotFound, got %v", err)
	}

	copilotDir := filepath.Join(dir, "github-copilot")
	if err := os.MkdirAll(copilotDir, 0o755); err != nil {
		t.Fatal(err)
	}
	data := `{"github.com:Iv1.abc": {"user": "me", "oauth_token": "gho_file"}}`
	if err := os.WriteFile(filepath.Join(copilotDir, "apps.json"), []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	token, err := LoadGitHubToken()
	if err != nil {
		t.Fatalf("LoadGitHubToken failed: %v", err)
	}
	if token != "gho_file" {
		t.Errorf("token = %q, want gho_file", token)
	}
}

func TestExchangeToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Token gho_ok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("bad credentials"))
			return
		}
		_, _ = w.Write([]byte(`{"token": "copilot-bearer", "expires_at": 1}`))
	}))
	defer srv.Close()

	token, err := exchangeToken(context.Background(), srv.Client(), srv.URL, "gho_ok")
	if err != nil {
		t.Fatalf("exchangeToken failed: %v", err)
	}
	if token != "copilot-bearer" {
		t.Errorf("token = %q, want copilot-bearer", token)
	}

	if _, err := exchangeToken(context.Background(), srv.Client(), srv.URL, "gho_bad"); err == nil {
		t.Error("expected error for rejected token")
	}
}
