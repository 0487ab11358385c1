package controlflow

// Session is the coordination state shared by one switch block and the
// case and default blocks rendered inside it.
//
// A nil *Session stands for "no enclosing switch": its selector is nil
// and it is never broken.
type Session struct {
	value  interface{}
	broken bool
}

// NewSession opens a session selecting on value.
func NewSession(value interface{}) *Session {
	return &Session{value: value}
}

// Value returns the selector value.
func (s *Session) Value() interface{} {
	if s == nil {
		return nil
	}
	return s.value
}

// Broken reports whether a matching case requested break.
func (s *Session) Broken() bool {
	return s != nil && s.broken
}

// Break locks out every later case and default of the session.
func (s *Session) Break() {
	if s != nil {
		s.broken = true
	}
}

// Matches reports whether the session is still open and its selector is
// loosely equal to one of candidates.
func (s *Session) Matches(candidates ...interface{}) bool {
	return !s.Broken() && Contains(candidates, s.Value())
}
