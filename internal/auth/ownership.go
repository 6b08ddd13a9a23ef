package auth

import "github.com/propconnect/propconnect/internal/domain"

// AssertOwner fails with Forbidden unless principalID owns the resource.
// An empty principal never owns anything.
func AssertOwner(resourceOwnerID, principalID string) error {
	if principalID == "" || resourceOwnerID != principalID {
		return domain.NotOwner()
	}
	return nil
}
