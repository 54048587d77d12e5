// Package httpapi serves the scan pipeline over HTTP with gin.
//
// Routes:
//
//	POST /api/v1/scan   scan one document, optionally with a second frame
//	GET  /healthz       liveness plus the state of remote dependencies
//	GET  /metrics       Prometheus exposition
//
// A scan request must carry the time the client captured it. Requests
// older than the configured age, or too far in the future, are rejected
// before any image is decoded. Every response carries an X-Request-ID
// header and the usual browser hardening headers; scan responses also carry
// a Server-Timing header.
package httpapi
