// Package http1 tokenizes HTTP/1.x message heads: request lines, status lines and
// header blocks. It never copies nor allocates: every result points into the parsed
// buffer, and header fields are stored into a caller-provided array.
//
// Parsing is meant to be retried on a growing buffer. A call either succeeds,
// returning the length of the head, or fails with errors.ErrIncomplete, meaning more
// bytes are needed, or with a malformed-input error, which is terminal.
package http1
