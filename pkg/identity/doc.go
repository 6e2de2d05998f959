// Package identity acquires application-level access tokens for the
// directory/graph API.
//
// The sweeper requests one token per cycle through the TokenSource
// interface and never caches it across cycles; the token service is the
// authority on lifetime and rotation. The concrete Client implements the
// OAuth2 client-credentials flow against a tenant-scoped token endpoint.
package identity
