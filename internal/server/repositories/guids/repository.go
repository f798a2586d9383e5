// Package guids resolves the public OSF identifier of a user.
package guids

import "context"

type Repository interface {
	// FindByUser returns the oldest GUID attached to the user row, or
	// common.ErrorNotFound.
	FindByUser(ctx context.Context, userID int64) (string, error)
}
