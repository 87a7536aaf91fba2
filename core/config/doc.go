// Package config provides configuration management for the ETL service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Remote: ticketing platform API credentials and paging limits
//   - Database: MySQL connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Archive: page snapshot archive toggles
//   - Sync: batch size and cursor overlap tunables
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Remote.BaseURL)
package config
