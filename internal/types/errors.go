package types

import "errors"

var (
	// ErrFetchTimeout is returned when navigation exceeded its budget on every readiness strategy
	ErrFetchTimeout = errors.New("page fetch timed out")

	// ErrFetch is returned on network or browser failures
	ErrFetch = errors.New("page fetch failed")

	// ErrSearchProvider is returned when the search provider answers non-2xx or malformed data
	ErrSearchProvider = errors.New("search provider request failed")

	// ErrNoSearchResults is returned when a query produced no usable links
	ErrNoSearchResults = errors.New("no search results")

	// ErrModelResponseMalformed is returned when a completion is not valid JSON even after repair
	ErrModelResponseMalformed = errors.New("model response is not valid JSON")

	// ErrModelRequest is returned when the language model endpoint could not be called
	ErrModelRequest = errors.New("language model request failed")

	// ErrNoBrand marks a title no brand could be resolved for; the title is searched unscoped
	ErrNoBrand = errors.New("no brand resolved")

	// ErrWrite is returned when the output destination cannot be written
	ErrWrite = errors.New("output write failed")

	// ErrCacheMiss is returned when a key is not in the cache
	ErrCacheMiss = errors.New("cache miss")
)
