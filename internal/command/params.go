package command

import (
	"strconv"
	"strings"

	"github.com/purochile/pcbot/internal/domain"
)

// ParamKind is the type of a positional command parameter
type ParamKind int

const (
	// ParamUser is a mention or raw user id
	ParamUser ParamKind = iota
	// ParamInt is a base-10 integer
	ParamInt
	// ParamWord is a single token
	ParamWord
	// ParamRest joins every remaining token with spaces
	ParamRest
)

func (k ParamKind) placeholder(name string) string {
	switch k {
	case ParamUser:
		return "@" + name
	case ParamRest:
		return name + "..."
	default:
		return name
	}
}

// Param describes one positional parameter
type Param struct {
	Name     string
	Kind     ParamKind
	Optional bool
}

// Args holds the bound, typed arguments of one invocation
type Args struct {
	strs map[string]string
	ints map[string]int
}

// Has reports whether an optional parameter was supplied
func (a Args) Has(name string) bool {
	if _, ok := a.strs[name]; ok {
		return true
	}
	_, ok := a.ints[name]
	return ok
}

// String returns a user, word or rest argument
func (a Args) String(name string) string {
	return a.strs[name]
}

// Int returns an integer argument, or def when it was not supplied
func (a Args) Int(name string, def int) int {
	if v, ok := a.ints[name]; ok {
		return v
	}
	return def
}

// bind validates raw tokens against params. Extra tokens are ignored unless a
// rest parameter collects them.
func bind(params []Param, raw []string) (Args, error) {
	args := Args{strs: make(map[string]string), ints: make(map[string]int)}

	for i, p := range params {
		if p.Kind == ParamRest {
			var rest string
			if i < len(raw) {
				rest = strings.TrimSpace(strings.Join(raw[i:], " "))
			}
			if rest == "" {
				if p.Optional {
					return args, nil
				}
				return args, domain.InvalidArgument(p.Name, "missing")
			}
			args.strs[p.Name] = rest
			return args, nil
		}

		if i >= len(raw) {
			if p.Optional {
				continue
			}
			return args, domain.InvalidArgument(p.Name, "missing")
		}

		token := raw[i]
		switch p.Kind {
		case ParamUser:
			id, ok := ParseUserID(token)
			if !ok {
				return args, domain.InvalidArgument(p.Name, "expected a user mention")
			}
			args.strs[p.Name] = id
		case ParamInt:
			n, err := strconv.Atoi(token)
			if err != nil {
				return args, domain.InvalidArgument(p.Name, "expected a whole number")
			}
			args.ints[p.Name] = n
		default:
			args.strs[p.Name] = token
		}
	}
	return args, nil
}
