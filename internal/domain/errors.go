package domain

import "errors"

var (
	// ErrProductNotFound is returned when the provider reports no product for a barcode
	ErrProductNotFound = errors.New("product not found in Open Food Facts database")

	// ErrNetworkFailure is returned when a provider request fails or returns a non-2xx status
	ErrNetworkFailure = errors.New("Open Food Facts request failed")

	// ErrEmptyInput is returned when a query, barcode or category is blank
	ErrEmptyInput = errors.New("empty input")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheFailure is returned when a value cannot be serialized or stored
	ErrCacheFailure = errors.New("cache operation failed")
)
