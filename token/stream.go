package token

import "strings"

// Stream is the complete, ordered token sequence of one lexed input,
// including hidden tokens and the final EOF token.
type Stream struct {
	Tokens []Token
	Source string
	File   string
}

// Len returns the number of tokens in the stream.
func (s *Stream) Len() int {
	return len(s.Tokens)
}

// At returns the token at index i.
func (s *Stream) At(i int) Token {
	return s.Tokens[i]
}

// Text concatenates the literals of the tokens in the inclusive range
// [from, to].
func (s *Stream) Text(from, to int) string {
	var b strings.Builder
	for i := from; i <= to && i < len(s.Tokens); i++ {
		b.WriteString(s.Tokens[i].Literal)
	}
	return b.String()
}

// LineText returns the source line on which the given position starts.
func (s *Stream) LineText(pos Position) string {
	if pos.LineStart > len(s.Source) {
		return ""
	}
	line := s.Source[pos.LineStart:]
	if end := strings.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	return strings.TrimSuffix(line, "\r")
}
