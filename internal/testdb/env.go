//go:build integration

package testdb

import (
	"os"
	"testing"
)

// Environment variables consulted for test database URLs, in priority order.
const (
	EnvTestDatabaseURL = "TASKFLOW_TEST_DATABASE_URL"
	EnvDatabaseURL     = "DATABASE_URL"
	EnvTestMongoURL    = "TASKFLOW_TEST_MONGO_URL"
	EnvTestRedisURL    = "TASKFLOW_TEST_REDIS_URL"
)

// GetTestDatabaseURL returns the postgres URL for integration tests, or "".
func GetTestDatabaseURL() string {
	for _, key := range []string{EnvTestDatabaseURL, EnvDatabaseURL} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// GetTestMongoURL returns the mongodb URL for integration tests, or "".
func GetTestMongoURL() string {
	return os.Getenv(EnvTestMongoURL)
}

// Redis returns the redis URL for integration tests, skipping the test when
// it is not configured.
func Redis(t *testing.T) string {
	t.Helper()
	url := os.Getenv(EnvTestRedisURL)
	requireURL(t, url, EnvTestRedisURL)
	return url
}

// isCIEnvironment returns true if running in any type of CI environment.
func isCIEnvironment() bool {
	for _, key := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if os.Getenv(key) != "" {
			return true
		}
	}
	return false
}

// requireURL skips the test when url is empty, or fails it in CI.
func requireURL(t *testing.T, url, envHint string) {
	t.Helper()
	if url != "" {
		return
	}
	if isCIEnvironment() {
		t.Fatalf("%s must be set in CI", envHint)
	}
	t.Skipf("%s not set, skipping integration test", envHint)
}
