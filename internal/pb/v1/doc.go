// Package pb defines the vlarm.v1.AlarmService gRPC contract.
//
// Messages are protobuf well-known types: alarms travel as structpb.Struct
// values whose fields are listed in the Field* constants, identifiers and
// utterances as wrapperspb.StringValue. The same alarm encoding is used by
// the alarm list file.
package pb
