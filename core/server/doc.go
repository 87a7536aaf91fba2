// Package server holds the HTTP server configuration.
//
// The serve command handles the actual server startup; this package only
// defines the configuration structure for server settings.
//
// # Configuration
//
// The Config struct defines the HTTP port and the API key protecting the
// reporting endpoints.
package server
