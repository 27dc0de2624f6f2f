package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrGitHubTokenNotFound is returned when no GitHub token source yields a token.
var ErrGitHubTokenNotFound = errors.New("GitHub token not found: set GITHUB_TOKEN or sign in to GitHub Copilot in your editor")

// tokenEnvVars are checked before any Copilot config file.
var tokenEnvVars = []string{"STINT_GITHUB_TOKEN", "GITHUB_TOKEN"}

// LoadGitHubToken returns the GitHub OAuth token from the environment or
// from the Copilot hosts.json/apps.json files written by editor plugins.
func LoadGitHubToken() (string, error) {
	if token := firstEnv(tokenEnvVars...); token != "" {
		return token, nil
	}

	configDir, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf("getting config directory: %w", err)
	}

	for _, name := range []string{"hosts.json", "apps.json"} {
		token, err := tokenFromCopilotFile(filepath.Join(configDir, "github-copilot", name))
		if err == nil && token != "" {
			return token, nil
		}
	}

	return "", ErrGitHubTokenNotFound
}

// userConfigDir follows XDG on unix and LOCALAPPDATA on windows, which is
// where the Copilot plugins store their files.
func userConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return local, nil
		}
		return filepath.Join(home, "AppData", "Local"), nil
	}
	return filepath.Join(home, ".config"), nil
}

// tokenFromCopilotFile reads the oauth_token of the first github.com entry.
func tokenFromCopilotFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var entries map[string]struct {
		OAuthToken string `json:"oauth_token"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	for host, entry := range entries {
		if strings.Contains(host, "github.com") && entry.OAuthToken != "" {
			return entry.OAuthToken, nil
		}
	}
	return "", fmt.Errorf("oauth_token not found in %s", path)
}
