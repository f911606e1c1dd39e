// Package reminder pulls the task description out of an utterance such as
// "remind me to finish my homework in 20 minutes".
package reminder

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// leadIns are tried in order and the first acceptable one wins.
// Specific phrases must precede generic ones like "to" and "for",
// otherwise the generic match truncates the task.
//
//nolint:gochecknoglobals // Read-only tables.
var leadIns = []string{
	"remind me to",
	"tell me to",
	"to",
	"that",
	"about",
	"for",
	"wake me up and tell me to",
	"set alarm and tell me to",
}

// timeWords start a trailing time clause that is cut from the task.
//
//nolint:gochecknoglobals // Read-only tables.
var timeWords = []string{"in", "at", "for", "minutes", "hours", "am", "pm", "oclock"}

// actionVerbs locate a task when no lead-in matched.
//
//nolint:gochecknoglobals // Read-only tables.
var actionVerbs = []string{"do", "finish", "complete", "go", "call", "pick", "buy", "study", "work", "exercise"}

//nolint:gochecknoglobals // Compiled once from timeWords.
var timeClauses = compileTimeClauses(timeWords)

const (
	// minTaskLength is exclusive: a task must be longer than this.
	minTaskLength = 3
	// maxActionWords bounds the task taken from an action verb onwards.
	maxActionWords = 10
)

func compileTimeClauses(words []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		res = append(res, regexp.MustCompile(`\s+`+regexp.QuoteMeta(w)+`\b`))
	}

	return res
}

// Extract returns the title-cased task found in text or an empty string.
func Extract(text string) string {
	text = strings.ToLower(text)

	task := afterLeadIn(text)
	if task == "" {
		task = fromActionVerb(text)
	}

	if task == "" {
		return ""
	}

	task = cases.Title(language.English).String(task)

	return strings.TrimSuffix(task, ".")
}

func afterLeadIn(text string) string {
	for _, phrase := range leadIns {
		idx := strings.Index(text, phrase)
		if idx < 0 {
			continue
		}

		task := StripTimeClause(strings.TrimSpace(text[idx+len(phrase):]))
		if utf8.RuneCountInString(task) > minTaskLength {
			return task
		}
	}

	return ""
}

// StripTimeClause cuts s at the earliest time word preceded by whitespace.
func StripTimeClause(s string) string {
	for _, re := range timeClauses {
		if loc := re.FindStringIndex(s); loc != nil {
			s = s[:loc[0]]
		}
	}

	return strings.TrimSpace(s)
}

func fromActionVerb(text string) string {
	for _, verb := range actionVerbs {
		idx := strings.Index(text, verb)
		if idx < 0 {
			continue
		}

		words := strings.Fields(text[idx:])
		if len(words) > maxActionWords {
			words = words[:maxActionWords]
		}

		return strings.Join(words, " ")
	}

	return ""
}
