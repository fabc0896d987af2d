package jsontree

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Path addresses one node in a document tree. The empty path is the root.
// Array indices are stored as their decimal string form, so a path renders
// uniformly as /users/3/name.
type Path []string

// Root is the empty path.
var Root = Path{}

// Child returns a new path extended by an object key.
func (p Path) Child(key string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = key
	return out
}

// Index returns a new path extended by an array index.
func (p Path) Index(i int) Path {
	return p.Child(strconv.Itoa(i))
}

// IsRoot reports whether the path addresses the document root.
func (p Path) IsRoot() bool { return len(p) == 0 }

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, seg := range prefix {
		if p[i] != seg {
			return false
		}
	}
	return true
}

// String renders the path as /a/b/2, or / for the root.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return "/" + strings.Join(p, "/")
}

// ParsePath parses the /a/b/2 form produced by String.
func ParsePath(s string) Path {
	s = strings.Trim(s, "/")
	if s == "" {
		return Root
	}
	return Path(strings.Split(s, "/"))
}

// MarshalJSON renders the path in its string form.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON parses the string form.
func (p *Path) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = ParsePath(s)
	return nil
}
