// Package docx opens WordprocessingML packages (.docx) for in-place mutation.
//
// A Document keeps every zip entry of the package in memory, parses the XML
// parts the mutation pipeline touches (main document, headers, footers,
// relationships, content types) into beevik/etree trees and writes the whole
// package back with a single Save. Nothing reaches the disk before Save, so a
// failed edit sequence leaves the original file untouched.
//
// Tree helpers (TextLeaves, FindBookmark, RemoveBetween, InsertAfter) operate
// on the etree elements exposed by Body, Headers and Footers. Elements are
// matched on namespace URI and local name, not on prefix.
//
// A handle holds an exclusive per-path lock until Close. Opening the same path
// twice without closing fails with ErrDocumentLocked.
package docx
