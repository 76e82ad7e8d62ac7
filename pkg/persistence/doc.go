// Package persistence stores the last good discovery document on disk.
//
// A client that cannot reach the discovery service can fall back to the
// cached document and still find its core. The file is JSON; the document
// itself is kept verbatim (base64 in the file).
package persistence
