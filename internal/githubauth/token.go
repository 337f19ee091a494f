package githubauth

import (
	"os"
	"strings"
)

// Environment variables consulted for a GitHub token, in order of preference.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

var tokenPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// Token is a resolved credential together with the variable that supplied it.
type Token struct {
	Value  string
	Source string
}

// EnvironmentLookup reads one environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ResolveToken returns the first non-blank token, checking overrides before the lookup. A nil lookup reads the process environment.
func ResolveToken(overrides map[string]string, lookup EnvironmentLookup) (Token, bool) {
	for _, key := range tokenPreference {
		if value, found := nonBlank(overrides[key]); found {
			return Token{Value: value, Source: key}, true
		}
	}

	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		rawValue, exists := lookup(key)
		if !exists {
			continue
		}
		if value, found := nonBlank(rawValue); found {
			return Token{Value: value, Source: key}, true
		}
	}
	return Token{}, false
}

func nonBlank(value string) (string, bool) {
	trimmedValue := strings.TrimSpace(value)
	return trimmedValue, len(trimmedValue) > 0
}
