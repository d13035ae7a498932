// Package media describes the local video file a session uploads.
//
// Inspect stats a path and derives the MIME type the way a browser file
// picker would (by extension, falling back to content sniffing). Limits
// enforces the accepted type and size, and ProcessedName derives the file name
// used when saving the processed result.
package media
