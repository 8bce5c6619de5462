// Package config provides configuration management for devserve.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. There is no configuration file format.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: bind host and port, directory browsing, shutdown timeout
//   - Log: logging level and format
//
// Nested keys map to upper-case variables joined by an underscore
// (server.browse -> SERVER_BROWSE). The bind address also honors the short
// HOST and PORT variables.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
