package ir

// Profile is a named induction configuration compiled from CUE.
type Profile struct {
	Name string `json:"name"`

	// K is the repetition threshold; always >= 1 after compilation.
	K int `json:"k"`

	// EndOfEpisode is the token that delimits episodes in tokenized input.
	EndOfEpisode string `json:"end_of_episode"`

	// Alphabet optionally fixes the token alphabet and its raw values
	// (position in the list). Empty means tokens are assigned on first sight.
	Alphabet []string `json:"alphabet,omitempty"`
}
