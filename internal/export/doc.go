// Package export saves processed payloads into an output directory.
//
// Saving is the terminal-side equivalent of a browser download: the payload
// is written to "<name>.part" while an exclusive lock on "<name>.lock" is held,
// then renamed into place so readers never observe a partial file.
package export
