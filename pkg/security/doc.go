// Package security groups the access controls of the strcalc HTTP server.
// The auth subpackage checks API keys on the /v1 routes.
package security
