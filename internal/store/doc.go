// Package store defines the persistence contracts of the application:
// the UserStore and TaskStore interfaces, the shared pagination and
// filter/sort building blocks they consume, sentinel errors, and the
// transaction helper. Implementations live in platform packages
// (see internal/platform/postgres).
package store
