// Package cli provides command-line interface setup and configuration
// for the polyglot application. It handles flag parsing, command
// creation, and configuration management using cobra and viper.
//
// Configuration precedence, highest first: command-line flags, POLYGLOT_*
// environment variables, the config file, flag defaults.
package cli
