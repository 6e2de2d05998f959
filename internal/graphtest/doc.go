// Package graphtest provides an in-process fake of the directory graph
// API and its token endpoint for integration tests.
package graphtest
