// Package server exposes the converter over HTTP with gin.
//
// Routes:
//
//	POST /api/document/generate-pdf  fill a template and return the PDF
//	POST /api/document/bookmarks     list the bookmarks of a template
//	GET  /api/templates              list available templates
//	GET  /api/health                 renderer discovery and pool size
//
// Conversions are admitted through a pool; when no converter frees up within
// the acquire timeout the request fails with 503.
package server
