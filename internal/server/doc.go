// Package server exposes the translation engine over HTTP.
//
// Routes:
//
//	POST /v1/translate   translate a JSON document into several languages
//	GET  /v1/languages   list supported languages and aliases
//	GET  /healthz        liveness probe
package server
