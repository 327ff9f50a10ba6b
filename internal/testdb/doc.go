//go:build integration

// Package testdb provides database fixtures for integration tests.
//
// Tests that need a real backend call Postgres, Mongo or Redis; each skips the test
// when the corresponding URL is not configured:
//
//	TASKFLOW_TEST_DATABASE_URL (or DATABASE_URL)  postgres connection string
//	TASKFLOW_TEST_MONGO_URL                       mongodb connection string
//	TASKFLOW_TEST_REDIS_URL                       redis connection string
//
// In CI a missing URL fails the test instead of skipping it.
//
// Run with:
//
//	go test -tags=integration ./...
package testdb
