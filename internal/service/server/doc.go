// Package server runs the vlarm daemon: the gRPC API, the ringer that speaks
// due alarms and the optional Prometheus endpoint.
package server
