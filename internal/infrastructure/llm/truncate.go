package llm

// Truncate returns the leading prefix of text holding at most limit runes.
// The cut is rune-safe and deterministic: the same input and limit always
// yield the same prefix. A non-positive limit disables truncation.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := 0
	for i := range text {
		if runes == limit {
			return text[:i]
		}
		runes++
	}
	return text
}
