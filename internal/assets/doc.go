// Package assets resolves template and image files by name inside a base
// directory.
//
// # Directory Structure
//
// A content root holds one directory per asset kind:
//
//	{contentRoot}/
//	├── templates/
//	│   └── {name}.docx     # DOCX templates, referenced by file name
//	├── images/
//	│   └── {name}.png      # images injected at bookmarks
//	└── output/             # per-request working copies (not served here)
//
// # Security
//
// Names are validated to reject path separators and traversal sequences.
// Store resolves symlinks and verifies paths stay within its base directory.
package assets
