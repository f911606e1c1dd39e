// Package alarm implements the gRPC transport for the alarm service.
//
// It adapts domain types to the protobuf struct encoding and exposes a server
// that calls into the alarm collection and the voice session.
package alarm
