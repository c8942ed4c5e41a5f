// Package lingo implements the keyword heuristic that steers response tone.
//
// Classification counts substring occurrences of fixed Swahili and Sheng
// markers in the user's prompt. Matching is deliberately substring based, not
// word-boundary based: a marker embedded inside a longer word still counts.
// Changing this to tokenized matching would change classification outcomes,
// so any improved strategy must be added as a separate one.
package lingo

import "strings"

// Register is the three-way tone classification of an utterance.
type Register int

const (
	// RegisterEnglish is the default: no Swahili or Sheng markers found.
	RegisterEnglish Register = iota
	// RegisterMixed means a light sprinkling of markers (1-2 hits).
	RegisterMixed
	// RegisterSheng means the utterance is mostly slang (3+ hits).
	RegisterSheng
)

func (r Register) String() string {
	switch r {
	case RegisterMixed:
		return "mixed"
	case RegisterSheng:
		return "sheng"
	default:
		return "english"
	}
}

// standardMarkers are common standard-register Swahili words.
var standardMarkers = []string{
	"sawa", "habari", "asante", "tafadhali", "karibu",
	"mambo", "vipi", "sana", "rafiki", "filamu",
}

// informalMarkers are Sheng / Nairobi-slang words.
var informalMarkers = []string{
	"bro", "noma", "safi", "poa", "manze", "msee", "fiti", "buda",
}

// Classify buckets text by how many Swahili and Sheng markers it contains.
// Empty input classifies as English.
func Classify(text string) Register {
	if text == "" {
		return RegisterEnglish
	}
	lower := strings.ToLower(text)

	hits := 0
	for _, m := range standardMarkers {
		hits += strings.Count(lower, m)
	}
	for _, m := range informalMarkers {
		hits += strings.Count(lower, m)
	}

	switch {
	case hits >= 3:
		return RegisterSheng
	case hits >= 1:
		return RegisterMixed
	default:
		return RegisterEnglish
	}
}

// ToneInstruction returns the natural-language directive appended to the
// system turn for a single outbound call. It is never persisted.
func (r Register) ToneInstruction() string {
	switch r {
	case RegisterSheng:
		return " The user is speaking Sheng, so reply in casual Sheng with an easygoing, playful tone."
	case RegisterMixed:
		return " The user mixes English and Swahili, so reply in a warm blend of simple English and Swahili."
	default:
		return " Reply in clear, friendly English."
	}
}
