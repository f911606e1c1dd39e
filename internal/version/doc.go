// Package version exposes vlarm build metadata.
//
// Version, Commit and BuildTime are injected with -ldflags -X at build time.
// Full is printed by the version subcommand; UserAgent tags speech API calls.
package version
