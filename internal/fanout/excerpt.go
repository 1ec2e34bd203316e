package fanout

// ExcerptLength is the number of characters of content quoted in a message.
const ExcerptLength = 60

// Excerpt returns the first max runes of s. It never splits a multi-byte character.
func Excerpt(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
