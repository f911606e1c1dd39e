// Package speech turns text into audible speech.
//
// A Speaker owns at most one utterance at a time: starting a new one stops
// the previous one first. Text goes through an ordered chain of
// synthesizers, usually the ElevenLabs HTTP API followed by a local command,
// and the first one that succeeds is handed to a Player.
package speech
