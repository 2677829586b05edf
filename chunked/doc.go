// Package chunked decodes the chunked transfer-coding in place.
package chunked
