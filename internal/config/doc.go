// Package config loads leaddesk's TOML configuration.
//
// # Discovery
//
// Load resolves the file in this order:
//
//  1. An explicitly provided path
//  2. ~/.config/leaddesk/config.toml
//
// A missing file is not an error; Default values are returned instead. Fields
// that are absent or blank keep their defaults.
//
// # Format
//
//	[api]
//	base_url = "https://crm.example.com/api"
//	timeout = "10s"
//	per_page = 25
//
//	[cache]
//	ttl = "5m"
//	max_size = 50
//	leads_ttl = "2m"
//	leads_max_size = 20
//
//	[storage]
//	state_db = "~/.local/share/leaddesk/state.db"
//
//	[refresh]
//	interval = "60s"
//	min_gap = "5s"
//
//	[log]
//	file = "~/.local/state/leaddesk/leaddesk.log"
//	level = "info"
//
//	[metrics]
//	listen = "127.0.0.1:9464"
//
// Durations use time.ParseDuration syntax and must be positive. Paths accept a
// leading "~". per_page is capped at 200 and the refresh interval is never
// shorter than five seconds.
//
// # Errors
//
// Load fails on unreadable files, malformed TOML, bad durations and unknown
// log levels. Everything else degrades to defaults.
package config
