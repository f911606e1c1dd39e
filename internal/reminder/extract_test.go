package reminder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExtract covers lead-in phrases, time clause stripping and the action verb fallback.
func TestExtract(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "remind me to with trailing delta",
			in:   "remind me to finish my homework in 20 minutes",
			want: "Finish My Homework",
		},
		{
			name: "mixed case input",
			in:   "Remind me to Call Mom at 5 pm",
			want: "Call Mom",
		},
		{
			name: "delta before the task",
			in:   "remind me in 20 minutes to finish my homework.",
			want: "Finish My Homework",
		},
		{
			name: "tell me to after a clock time",
			in:   "wake me up at 6:30 am and tell me to go to the gym.",
			want: "Go To The Gym",
		},
		{
			name: "about",
			in:   "remind me about the dentist appointment",
			want: "The Dentist Appointment",
		},
		{
			name: "short remainder is rejected",
			in:   "remind me to eat",
			want: "",
		},
		{
			name: "short remainder falls back to an action verb",
			in:   "remind me to go",
			want: "Go",
		},
		{
			name: "lead-in matches inside a word",
			in:   "call the plumber today about the leak",
			want: "Day About The Leak",
		},
		{
			name: "action verb fallback",
			in:   "please call the plumber right now",
			want: "Call The Plumber Right Now",
		},
		{
			name: "action verb fallback keeps ten words",
			in:   "go grab some coffee and a bagel then walk back home slowly",
			want: "Go Grab Some Coffee And A Bagel Then Walk Back",
		},
		{
			name: "action verb fallback on short text",
			in:   "buy milk",
			want: "Buy Milk",
		},
		{
			name: "nothing to extract",
			in:   "asdf qwerty",
			want: "",
		},
		{
			name: "bare relative delta",
			in:   "in 20 minutes",
			want: "",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			require.Equal(t, tc.want, Extract(tc.in))
		})
	}
}

// TestStripTimeClause cuts at the earliest time word regardless of table order.
func TestStripTimeClause(t *testing.T) {
	t.Parallel()

	require.Equal(t, "take pills", StripTimeClause("take pills at 9 pm in the kitchen"))
	require.Equal(t, "walk the dog", StripTimeClause("walk the dog for 30 minutes"))
	require.Equal(t, "attend class", StripTimeClause("attend class"))
	require.Equal(t, "check the inbox", StripTimeClause("check the inbox"))
}
