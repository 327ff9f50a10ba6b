// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package.
// It handles query construction, error mapping and the embedded goose
// migrations. Connections are opened through database/sql with the pgx
// stdlib driver.
package postgres
