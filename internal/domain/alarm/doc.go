// Package alarm contains the Alarm entity and the pure status classifier.
//
// Status is derived from the time of day only and is never stored: callers
// sample the clock and classify again whenever they need a fresh view.
package alarm
