// Package assets provides the print stylesheets injected into pages before
// capture.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in print.css compiled into the binary
//	    ├── FilesystemLoader  - stylesheets from a user directory
//	    └── Resolver          - custom directory first, embedded fallback
//
// A styles directory is flat:
//
//	{dir}/
//	├── print.css        # replaces the embedded print stylesheet
//	└── {type}.css       # extra rules for one document type
//
// # Security
//
// Style names are validated to prevent path traversal.
// FilesystemLoader resolves symlinks and verifies paths stay within its directory.
package assets
