package mock

import (
	"context"

	"github.com/jaldrishti/jaldrishti"
)

// Compile-time interface check
var _ jaldrishti.DuplicateRegistry = (*DuplicateRegistry)(nil)

// DuplicateRegistry is a mock implementation of jaldrishti.DuplicateRegistry.
type DuplicateRegistry struct {
	CheckAndAddFn func(ctx context.Context, hash string) (bool, error)
	LenFn         func(ctx context.Context) (int, error)
	CloseFn       func() error
}

func (r *DuplicateRegistry) CheckAndAdd(ctx context.Context, hash string) (bool, error) {
	if r.CheckAndAddFn != nil {
		return r.CheckAndAddFn(ctx, hash)
	}
	return false, nil
}

func (r *DuplicateRegistry) Len(ctx context.Context) (int, error) {
	if r.LenFn != nil {
		return r.LenFn(ctx)
	}
	return 0, nil
}

func (r *DuplicateRegistry) Close() error {
	if r.CloseFn != nil {
		return r.CloseFn()
	}
	return nil
}
