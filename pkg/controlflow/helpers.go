package controlflow

// Block is the part of a block helper's options the control-flow helpers
// need: the primary and the alternate branch renderers.
// *raymond.Options satisfies it.
type Block interface {
	Fn() string
	Inverse() string
}

// IfEquals renders the primary branch when a and b are loosely equal and
// the alternate branch otherwise.
func IfEquals(a, b interface{}, blk Block) string {
	if LooseEqual(a, b) {
		return blk.Fn()
	}
	return blk.Inverse()
}

// Switch opens a session on value, renders body with it and returns the
// rendered output. The session does not outlive the call.
func Switch(value interface{}, body func(*Session) string) string {
	return body(NewSession(value))
}

// Case renders the primary branch when s matches one of candidates, and
// breaks s afterwards if breakRequested is set. It renders nothing
// otherwise; the alternate branch is never used.
func Case(s *Session, blk Block, breakRequested bool, candidates ...interface{}) string {
	if !s.Matches(candidates...) {
		return ""
	}
	if breakRequested {
		s.Break()
	}
	return blk.Fn()
}

// Default renders the primary branch unless a case of s requested break.
func Default(s *Session, blk Block) string {
	if s.Broken() {
		return ""
	}
	return blk.Fn()
}
