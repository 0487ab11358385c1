package controlflow

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aymerick/raymond"
)

// Helper names, as used in templates.
const (
	HelperIfEquals = "ifEquals"
	HelperSwitch   = "switch"
	HelperCase     = "case"
	HelperDefault  = "default"
)

// sessionKey is the private data frame entry holding the open session.
const sessionKey = "_switch_session_"

// Registrar is a helper-registration facility. *raymond.Template
// satisfies it, as does the render engine.
type Registrar interface {
	RegisterHelper(name string, helper interface{})
}

// Install registers the ifEquals, switch, case and default helpers on r.
// Whether a second Install replaces the helpers is up to r: the render
// engine keeps the last registration, a *raymond.Template panics on
// duplicates.
//
// Templates using case must go through Preprocess before parsing.
func Install(r Registrar) {
	for name, helper := range Helpers() {
		r.RegisterHelper(name, helper)
	}
}

// Helpers returns the raymond helper functions keyed by template name.
func Helpers() map[string]interface{} {
	return map[string]interface{}{
		HelperIfEquals: ifEqualsHelper,
		HelperSwitch:   switchHelper,
		HelperCase:     caseHelper,
		HelperDefault:  defaultHelper,
	}
}

func ifEqualsHelper(a, b interface{}, options *raymond.Options) string {
	return IfEquals(a, b, options)
}

// switchHelper hands the session to the body through a fresh private data
// frame, so a nested switch shadows it instead of overwriting it.
func switchHelper(value interface{}, options *raymond.Options) string {
	return Switch(value, func(s *Session) string {
		frame := options.NewDataFrame()
		frame.Set(sessionKey, s)
		return options.FnData(frame)
	})
}

func caseHelper(options *raymond.Options) string {
	breakRequested := options.HashProp("break") == true
	return Case(sessionOf(options), options, breakRequested, candidates(options.Hash())...)
}

func defaultHelper(options *raymond.Options) string {
	return Default(sessionOf(options), options)
}

func sessionOf(options *raymond.Options) *Session {
	s, _ := options.Data(sessionKey).(*Session)
	return s
}

// candidates collects the case values Preprocess moved into the hash, in
// their original order. Positions raymond dropped for resolving to nil
// come back as nil.
func candidates(hash map[string]interface{}) []interface{} {
	type indexed struct {
		pos int
		val interface{}
	}

	var found []indexed
	for key, val := range hash {
		if !strings.HasPrefix(key, candidatePrefix) {
			continue
		}
		pos, err := strconv.Atoi(key[len(candidatePrefix):])
		if err != nil || pos < 0 {
			continue
		}
		found = append(found, indexed{pos: pos, val: val})
	}

	if count, ok := candidateTotal(hash); ok {
		values := make([]interface{}, count)
		for _, c := range found {
			if c.pos < count {
				values[c.pos] = c.val
			}
		}
		return values
	}

	sort.Slice(found, func(i, j int) bool { return found[i].pos < found[j].pos })

	values := make([]interface{}, len(found))
	for i, c := range found {
		values[i] = c.val
	}
	return values
}

func candidateTotal(hash map[string]interface{}) (int, bool) {
	switch n := hash[candidateCount].(type) {
	case int:
		return n, n >= 0
	case float64:
		return int(n), n >= 0
	}
	return 0, false
}
