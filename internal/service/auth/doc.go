// Package auth issues and validates the bearer tokens of the generation
// service and manages local accounts: registration, login and turning a token
// back into a domain.Session.
package auth
