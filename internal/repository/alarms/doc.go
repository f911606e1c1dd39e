// Package alarms implements persistence for the alarm list.
//
// The FileRepository stores and loads the list as JSON on disk and exposes a
// Repository interface that the alarm collection manager depends on.
package alarms
