// Package pipeline implements the in-place mutations applied to a DOCX
// template before it is rendered:
//   - literal variable substitution in body, header and footer text
//   - bookmark content replacement and bookmark listing
//   - image injection at a bookmark
//
// Every operation works on an already opened document and never saves it.
// Persisting is left to the caller, which saves once after the whole
// sequence so a failure halfway leaves the file on disk untouched.
package pipeline
