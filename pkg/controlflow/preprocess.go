package controlflow

import (
	"strconv"
	"strings"
)

// candidatePrefix names the hash arguments Preprocess gives case values.
// candidateCount carries how many there were, since raymond drops hash
// pairs whose value resolves to nil.
const (
	candidatePrefix = "__case"
	candidateCount  = candidatePrefix + "s"
)

// Preprocess rewrites the positional values of every {{#case ...}} tag in
// src into indexed hash arguments:
//
//	{{#case "a" status break=true}}  =>  {{#case __case0="a" __case1=status break=true __cases=2}}
//
// raymond only calls helpers whose arity matches the call site, so the
// variable-length candidate list has to travel in the hash. Comments, raw
// blocks and escaped mustaches are left untouched, as is any tag that
// cannot be scanned to its closing braces.
func Preprocess(src string) string {
	if !strings.Contains(src, HelperCase) {
		return src
	}

	var out strings.Builder
	out.Grow(len(src) + 32)

	i := 0
	for {
		j := strings.Index(src[i:], "{{")
		if j < 0 {
			out.WriteString(src[i:])
			return out.String()
		}
		j += i

		if skip := verbatimEnd(src, j); skip > j {
			out.WriteString(src[i:skip])
			i = skip
			continue
		}

		nameEnd, ok := caseOpenTag(src, j)
		if !ok {
			end := tagEnd(src, j)
			out.WriteString(src[i:end])
			i = end
			continue
		}

		args, closeAt, ok := scanArgs(src, nameEnd)
		if !ok || !hasPositional(args) {
			out.WriteString(src[i:nameEnd])
			i = nameEnd
			continue
		}

		out.WriteString(src[i:nameEnd])
		n := 0
		for _, a := range args {
			out.WriteByte(' ')
			if !a.hash {
				out.WriteString(candidatePrefix)
				out.WriteString(strconv.Itoa(n))
				out.WriteByte('=')
				n++
			}
			out.WriteString(a.text)
		}
		out.WriteString(" " + candidateCount + "=" + strconv.Itoa(n))
		i = closeAt
	}
}

type tagArg struct {
	text string
	hash bool
}

func hasPositional(args []tagArg) bool {
	for _, a := range args {
		if !a.hash {
			return true
		}
	}
	return false
}

// verbatimEnd returns the end of a comment, raw block or escaped mustache
// starting at j, or j when there is none.
func verbatimEnd(src string, j int) int {
	if j > 0 && src[j-1] == '\\' {
		return j + 2
	}

	rest := src[j:]
	switch {
	case strings.HasPrefix(rest, "{{{{"):
		if end := strings.Index(rest, "{{{{/"); end >= 0 {
			if stop := strings.Index(rest[end:], "}}}}"); stop >= 0 {
				return j + end + stop + 4
			}
		}
		return len(src)
	case strings.HasPrefix(rest, "{{!--"), strings.HasPrefix(rest, "{{~!--"):
		if end := strings.Index(rest, "--}}"); end >= 0 {
			return j + end + 4
		}
		if end := strings.Index(rest, "--~}}"); end >= 0 {
			return j + end + 5
		}
		return len(src)
	case strings.HasPrefix(rest, "{{!"), strings.HasPrefix(rest, "{{~!"):
		if end := strings.Index(rest, "}}"); end >= 0 {
			return j + end + 2
		}
		return len(src)
	}
	return j
}

// tagEnd returns the offset just past the closing braces of the mustache
// opening at j, or j+2 when they cannot be found.
func tagEnd(src string, j int) int {
	k := j + 2
	for k < len(src) && strings.IndexByte("{~#/^>&*", src[k]) >= 0 {
		k++
	}
	_, closeAt, ok := scanArgs(src, k)
	if !ok {
		return j + 2
	}
	if src[closeAt] == '~' {
		return closeAt + 3
	}
	return closeAt + 2
}

// caseOpenTag reports whether a {{#case block opens at j and returns the
// offset just past the helper name.
func caseOpenTag(src string, j int) (int, bool) {
	k := j + 2
	if k < len(src) && src[k] == '~' {
		k++
	}
	if k >= len(src) || src[k] != '#' {
		return 0, false
	}
	k = skipSpace(src, k+1)
	if !strings.HasPrefix(src[k:], HelperCase) {
		return 0, false
	}
	k += len(HelperCase)
	if k >= len(src) {
		return 0, false
	}
	switch c := src[k]; {
	case isSpace(c), c == '}', c == '~':
		return k, true
	}
	return 0, false
}

// scanArgs splits the arguments of the tag body starting at i and returns
// them with the offset of the closing "}}" or "~}}".
func scanArgs(src string, i int) ([]tagArg, int, bool) {
	var args []tagArg
	for {
		i = skipSpace(src, i)
		if i >= len(src) {
			return nil, 0, false
		}
		if isClose(src, i) {
			return args, i, true
		}

		start := i
		tok, next := scanToken(src, i)
		if next == i {
			return nil, 0, false
		}
		i = next

		eq := topLevelIndex(tok, '=')
		switch {
		case eq >= 0 && eq < len(tok)-1:
			args = append(args, tagArg{text: tok, hash: true})
			continue
		case eq == len(tok)-1:
			// key= value
		default:
			j := skipSpace(src, i)
			if j >= len(src) || src[j] != '=' {
				args = append(args, tagArg{text: tok})
				continue
			}
			// key = value
			i = j + 1
		}

		j := skipSpace(src, i)
		_, next = scanToken(src, j)
		if next == j {
			return nil, 0, false
		}
		i = next
		args = append(args, tagArg{text: src[start:i], hash: true})
	}
}

// scanToken reads one argument: a literal, a path or a parenthesized
// subexpression. It stops at whitespace or the closing braces at depth 0.
func scanToken(src string, i int) (string, int) {
	start := i
	depth := 0
	var quote byte
	for i < len(src) {
		c := src[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			end := strings.IndexByte(src[i:], ']')
			if end < 0 {
				return "", start
			}
			i += end
		case c == '(':
			depth++
		case c == ')':
			depth--
		case depth == 0 && (isSpace(c) || isClose(src, i)):
			return src[start:i], i
		}
		i++
	}
	return "", start
}

func topLevelIndex(tok string, b byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == b && depth == 0:
			return i
		}
	}
	return -1
}

func isClose(src string, i int) bool {
	return strings.HasPrefix(src[i:], "}}") || strings.HasPrefix(src[i:], "~}}")
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
