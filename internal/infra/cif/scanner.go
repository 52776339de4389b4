package cif

import (
	"fmt"
	"strings"
)

// token is one lexical unit. quoted marks values that came from quoted
// strings or semicolon text blocks, which can never be control words.
type token struct {
	text   string
	quoted bool
}

// tokenize splits mmCIF input into tokens: whitespace-separated words,
// single- and double-quoted strings, multiline semicolon text blocks,
// with # comments stripped.
func tokenize(data []byte) ([]token, error) {
	var tokens []token
	lines := strings.Split(string(data), "\n")
	inText := false
	var text strings.Builder
	for ln, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if inText {
			if strings.HasPrefix(line, ";") {
				tokens = append(tokens, token{text: text.String(), quoted: true})
				text.Reset()
				inText = false
				continue
			}
			if text.Len() > 0 {
				text.WriteByte('\n')
			}
			text.WriteString(line)
			continue
		}
		if strings.HasPrefix(line, ";") {
			inText = true
			text.WriteString(strings.TrimSpace(line[1:]))
			continue
		}
		i := 0
		for i < len(line) {
			switch c := line[i]; {
			case c == ' ' || c == '\t':
				i++
			case c == '#':
				i = len(line)
			case c == '\'' || c == '"':
				end := strings.IndexByte(line[i+1:], c)
				if end < 0 {
					return nil, fmt.Errorf("cif: line %d: unterminated quote", ln+1)
				}
				tokens = append(tokens, token{text: line[i+1 : i+1+end], quoted: true})
				i += end + 2
			default:
				start := i
				for i < len(line) && line[i] != ' ' && line[i] != '\t' {
					i++
				}
				tokens = append(tokens, token{text: line[start:i]})
			}
		}
	}
	if inText {
		return nil, fmt.Errorf("cif: unterminated text block")
	}
	return tokens, nil
}
