// Package alarms maintains the alarm collection.
//
// The Manager keeps alarms sorted by trigger time, assigns identifiers,
// rejects reused ones and hands every changed list to a repository.
package alarms
