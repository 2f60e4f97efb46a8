package core

import (
	"errors"
)

var (
	// ErrCreationFailure wraps every error reported by the device while
	// creating a cached object.
	ErrCreationFailure = errors.New("device object creation failed")
	// ErrUseAfterTeardown is returned when a cache or allocator is used after
	// it has been destroyed. It signals a programming defect.
	ErrUseAfterTeardown = errors.New("used after teardown")
	// ErrPoolExhausted is returned when a descriptor set cannot be allocated
	// even from a freshly created pool.
	ErrPoolExhausted = errors.New("descriptor pool exhausted")
	ErrUnknown       = errors.New("unknown")
)
