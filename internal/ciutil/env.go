package ciutil

import (
	"log/slog"
	"os"
)

// Environment variables set by common CI providers.
const (
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"
)

var ciEnvVars = []string{EnvCI, EnvGitHubActions, EnvGitLabCI, EnvJenkinsURL, EnvCircleCI}

// IsCI reports whether the process runs under a CI provider.
func IsCI() bool {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// GetEnvWithFallbacks returns the value of the first non-empty variable in
// names, and which name supplied it. A value found under anything other than
// the first, preferred name is logged as legacy. Both results are empty when
// nothing is set.
func GetEnvWithFallbacks(names []string, logger *slog.Logger) (value, name string) {
	for i, n := range names {
		v := os.Getenv(n)
		if v == "" {
			continue
		}
		if i > 0 && logger != nil {
			logger.Warn("using legacy environment variable",
				slog.String("used_var", n),
				slog.String("preferred_var", names[0]))
		}
		return v, n
	}
	return "", ""
}
