// Package voice runs a spoken alarm-setting session: it receives transcript
// events, interprets the final utterance, creates the alarm and answers aloud.
package voice
