// Package config defines the vlarm settings file and helpers to load,
// validate and save it in YAML format.
package config
