package auth

import (
	"regexp"
	"strings"
)

// PermissionSet holds permission tokens and evaluates whether requested
// permission names, possibly wildcarded with `*`, are satisfied.
type PermissionSet struct {
	TokenSet
}

// IsAllowed reports whether the requested permission names are satisfied by
// the stored permissions.
//
// A name without `*` must match a stored permission exactly. A name with one
// or more `*` is satisfied when at least one stored permission matches the
// pattern (`*` matches any substring, the rest is literal, anchored at both
// ends). With allRequired every requested name must be satisfied; otherwise
// the first satisfied name decides the result.
func (p *PermissionSet) IsAllowed(names []string, allRequired bool) bool {
	matched := 0
	for _, name := range names {
		if !p.nameSatisfied(name) {
			continue
		}
		if !allRequired {
			return true
		}
		matched++
	}
	return matched == len(names)
}

func (p *PermissionSet) nameSatisfied(name string) bool {
	if !strings.Contains(name, "*") {
		return p.Has(name)
	}
	re, err := wildcardPattern(name)
	if err != nil {
		return false
	}
	for _, stored := range p.Names() {
		if re.MatchString(stored) {
			return true
		}
	}
	return false
}

// HasPermission reports exact membership by name, without wildcard matching.
func (p *PermissionSet) HasPermission(name string) bool {
	return p.Has(name)
}

// HasPermissionID reports membership by numeric permission id.
func (p *PermissionSet) HasPermissionID(id int) bool {
	return p.HasID(id)
}

// wildcardPattern compiles a permission name containing `*` into an anchored
// regular expression. Everything except `*` is matched literally.
func wildcardPattern(name string) (*regexp.Regexp, error) {
	parts := strings.Split(name, "*")
	for i := range parts {
		parts[i] = regexp.QuoteMeta(parts[i])
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}
