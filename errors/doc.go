// Package errors holds the results every parsing operation may fail with.
package errors
