// Package blob hands out object URLs for in-memory payloads and local files.
//
// A Registry issues opaque "blob:vidup/<uuid>" URLs and keeps the backing
// data alive until the URL is revoked. A Slot owns at most one URL at a time
// and revokes the previous one whenever it is overwritten or released, which
// keeps preview and result URLs from leaking across session resets.
package blob
