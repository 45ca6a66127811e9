package service

import (
	"errors"
	"fmt"
)

// Pipeline error taxonomy. Handlers map these to HTTP statuses with
// errors.Is; everything else surfaces as an internal error.
var (
	// ErrInvalidInput covers an empty artwork name and images failing
	// validation. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType is an ErrInvalidInput specialization for images
	// whose declared content type is not on the allow-list, so the HTTP
	// layer can answer 415 instead of 400.
	ErrUnsupportedType = fmt.Errorf("%w: unsupported content type", ErrInvalidInput)

	// ErrPayloadTooLarge covers images over the configured size ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")

	// ErrPersistenceFailed means a freshly generated result could not be
	// written. The draft existed in memory, but durability is part of the
	// contract of a successful response, so the request fails.
	ErrPersistenceFailed = errors.New("persistence failed")
)
