package server

import "regexp"

// disclaimerPatterns match the phrases stripped from upstream replies. The
// persona already covers disclosure; boilerplate disclaimers just break the
// conversational voice.
var disclaimerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as an ai`),
	regexp.MustCompile(`(?i)language model`),
}

// SanitizeReply removes every case-insensitive occurrence of the disclaimer
// phrases, preserving the surrounding text.
func SanitizeReply(reply string) string {
	for _, pattern := range disclaimerPatterns {
		reply = pattern.ReplaceAllLiteralString(reply, "")
	}
	return reply
}
