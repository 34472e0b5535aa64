// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. Environment
// variables use the DEVTRACKER_ prefix, with dots in key names replaced by
// underscores (server.port becomes DEVTRACKER_SERVER_PORT).
package config
