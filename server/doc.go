// Package server exposes the engine over a JSON HTTP API built on
// go-restful. Routes live under /api/v1: index, search, similar,
// collections and health. Domain errors map onto HTTP statuses in
// handler.go; every response carries an X-Request-Id header.
package server
