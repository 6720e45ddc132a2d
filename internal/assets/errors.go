package assets

import "errors"

// Sentinel errors for style loading.
var (
	// ErrStyleNotFound indicates the requested stylesheet does not exist.
	ErrStyleNotFound = errors.New("style not found")

	// ErrInvalidAssetName indicates the name contains path separators,
	// dots or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the styles directory is unusable.
	ErrInvalidBasePath = errors.New("invalid styles directory")

	ErrAssetRead     = errors.New("failed to read style")
	ErrPathTraversal = errors.New("path traversal detected")
)
