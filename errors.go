package site2pdf

import "errors"

// Sentinel errors for library operations.
var (
	// Browser lifecycle errors (fatal for a batch).
	ErrBrowserLaunch  = errors.New("failed to launch browser")
	ErrBrowserConnect = errors.New("failed to connect to browser")

	// Per-document session errors.
	ErrSessionOpen  = errors.New("failed to open browser session")
	ErrNavigate     = errors.New("failed to load document")
	ErrStyleInject  = errors.New("failed to inject print styles")
	ErrCapture      = errors.New("PDF capture failed")
	ErrCaptureTime  = errors.New("PDF capture timed out")
	ErrWritePDF     = errors.New("failed to write PDF file")
	ErrInternal     = errors.New("internal conversion error")
	ErrQRGeneration = errors.New("QR code generation failed")

	// Configuration errors (fatal at startup).
	ErrMissingDefaults  = errors.New("configuration is missing required defaults")
	ErrInvalidPageRules = errors.New("invalid page rules")
	ErrInvalidQRConfig  = errors.New("invalid QR code configuration")
	ErrInvalidWaitRules = errors.New("invalid wait conditions")
	ErrUnsupportedPage  = errors.New("unsupported page specification")

	// Discovery and output errors.
	ErrInputRoot      = errors.New("invalid input root")
	ErrInvalidPattern = errors.New("invalid exclude pattern")
	ErrOutputDir      = errors.New("failed to create output directory")
	ErrOutputLocked   = errors.New("output directory is locked by another batch")
	ErrPublishCopy    = errors.New("failed to copy artifact")
)
