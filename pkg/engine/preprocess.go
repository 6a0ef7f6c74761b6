package engine

// kwPrefix marks keyword strings produced by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites gear script source into something zygomys
// accepts:
//
//   - :keyword becomes the string "__kw_keyword", so keywords never clash
//     with user symbols of the same name
//   - kebab-case identifiers such as gear-train become gear_train, since
//     zygomys reads a hyphen as subtraction
//   - ; and ;; line comments become // comments
//
// String literals, in double quotes or backticks, pass through untouched.
func preprocessSource(source string) string {
	s := &rewriter{src: []byte(source), out: make([]byte, 0, len(source)+len(source)/4)}
	for s.pos < len(s.src) {
		switch c := s.src[s.pos]; {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.peek() == '=':
			s.copy(2)
		case c == ':' && isLetter(s.peek()):
			s.keyword()
		case c == '-' && s.pos > 0 && isIdentChar(s.src[s.pos-1]) && isLetter(s.peek()):
			s.out = append(s.out, '_')
			s.pos++
		default:
			s.copy(1)
		}
	}
	return string(s.out)
}

type rewriter struct {
	src []byte
	out []byte
	pos int
}

func (s *rewriter) peek() byte {
	if s.pos+1 < len(s.src) {
		return s.src[s.pos+1]
	}
	return 0
}

func (s *rewriter) copy(n int) {
	end := s.pos + n
	if end > len(s.src) {
		end = len(s.src)
	}
	s.out = append(s.out, s.src[s.pos:end]...)
	s.pos = end
}

// quoted copies a string literal including both delimiters.
func (s *rewriter) quoted(delim byte, escapes bool) {
	s.copy(1)
	for s.pos < len(s.src) && s.src[s.pos] != delim {
		if escapes && s.src[s.pos] == '\\' {
			s.copy(2)
			continue
		}
		s.copy(1)
	}
	s.copy(1)
}

func (s *rewriter) comment() {
	s.out = append(s.out, '/', '/')
	for s.pos < len(s.src) && s.src[s.pos] == ';' {
		s.pos++
	}
	for s.pos < len(s.src) && s.src[s.pos] != '\n' {
		s.copy(1)
	}
}

func (s *rewriter) keyword() {
	start := s.pos + 1
	end := start
	for end < len(s.src) && isKWChar(s.src[end]) {
		end++
	}
	s.out = append(s.out, '"')
	s.out = append(s.out, kwPrefix...)
	s.out = append(s.out, s.src[start:end]...)
	s.out = append(s.out, '"')
	s.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isKWChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}
