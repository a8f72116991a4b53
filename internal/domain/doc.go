// Package domain contains the core entity types of the application:
// users and the tasks they own. Entities carry their own validation and
// are persistence-agnostic; storage concerns live in the store packages.
package domain
