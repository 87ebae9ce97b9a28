package affiliate

import "context"

// Repository defines the read-only interface for affiliates
type Repository interface {
	// Get returns an affiliate by id, or ErrNotFound
	Get(ctx context.Context, id string) (*Affiliate, error)
}
