// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, together with the
// embedded goose migrations of the PostgreSQL schema.
//
// Writers of one (user, item) progress key serialize on a transaction-scoped
// advisory lock taken by GetForUpdate, and streak writers on a row lock of
// the user. Both are released when the surrounding transaction ends.
package postgres
