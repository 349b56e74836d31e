// Package config provides centralized configuration management for the
// ledger pipeline. It loads settings from environment variables with an
// optional YAML overlay, validates them, and exposes the executable-relative
// directory layout used by every binary.
//
// # Configuration Sources
//
// Configuration is loaded in order of precedence:
//
//	1. YAML file (config.yaml or configs/config.yaml, if present)
//	2. Environment variables
//	3. Struct-tag defaults
//
// # Environment Variables
//
// All environment variables use the FFLEDGER_ prefix:
//
//	FFLEDGER_SERVER_PORT=8080
//	FFLEDGER_SHEETS_SPREADSHEET_ID=1aBcD...
//	FFLEDGER_SHEETS_API_KEY=AIza...
//	FFLEDGER_LEAGUE_SEASON=2025
//	FFLEDGER_LOGGING_LEVEL=debug
//
// # Path Management
//
// All file system paths resolve relative to the executable location
// through the Paths type:
//
//	paths, err := config.GetPaths()
//	if err != nil {
//		return err
//	}
//	if err := paths.EnsureDirectories(); err != nil {
//		return err
//	}
//	feed := paths.ReferencePath("player_feed.csv")
package config
