// Package cli provides shared helpers for the callisto command line:
// typed command errors, signal handling, and output formatting.
package cli
