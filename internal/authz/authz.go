// Package authz holds composable authorization rules evaluated before any mutation.
package authz

import (
	"job-board-api/internal/models"

	"github.com/google/uuid"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID uuid.UUID
	Role   models.Role
}

// Authenticated reports whether the principal carries an identity.
func (p Principal) Authenticated() bool {
	return p.UserID != uuid.Nil
}

// Rule decides whether a principal may act on a resource.
type Rule[R any] func(p Principal, resource R) bool

// All combines rules with logical AND. An empty set denies.
func All[R any](rules ...Rule[R]) Rule[R] {
	return func(p Principal, resource R) bool {
		if len(rules) == 0 {
			return false
		}
		for _, rule := range rules {
			if !rule(p, resource) {
				return false
			}
		}
		return true
	}
}

// Any combines rules with logical OR.
func Any[R any](rules ...Rule[R]) Rule[R] {
	return func(p Principal, resource R) bool {
		for _, rule := range rules {
			if rule(p, resource) {
				return true
			}
		}
		return false
	}
}

// Allowed evaluates the rules against the resource; unauthenticated principals are always denied.
func Allowed[R any](p Principal, resource R, rules ...Rule[R]) bool {
	if !p.Authenticated() {
		return false
	}
	return All(rules...)(p, resource)
}

// Authenticated admits any principal with an identity.
func Authenticated[R any]() Rule[R] {
	return func(p Principal, _ R) bool { return p.Authenticated() }
}

// HasRole admits principals holding the given role.
func HasRole[R any](role models.Role) Rule[R] {
	return func(p Principal, _ R) bool { return p.Role == role }
}

// IsOwner admits the principal whose id the resource reports as owner.
func IsOwner[R any](owner func(R) uuid.UUID) Rule[R] {
	return func(p Principal, resource R) bool {
		return owner(resource) == p.UserID
	}
}

// IsMember admits principals listed in the resource's member set.
func IsMember[R any](members func(R) []uuid.UUID) Rule[R] {
	return func(p Principal, resource R) bool {
		for _, id := range members(resource) {
			if id == p.UserID {
				return true
			}
		}
		return false
	}
}
