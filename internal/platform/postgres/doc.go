// Package postgres implements the store interfaces against a PostgreSQL
// database using database/sql with the pgx driver. Entity stores share the
// clause builders in query.go for filtering, sorting and pagination rather
// than inheriting from a common base; each store declares only its own
// column allow-lists and row scanning.
package postgres
