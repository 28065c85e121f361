// Package server runs the application's HTTP transport.
//
// It owns the http.Server lifecycle, including startup, signal handling and
// graceful shutdown.
package server
