package forecast

import (
	"fmt"
	"strings"
)

// RoleKey identifies what a forecast is for: a role, optionally narrowed to
// one skill.
type RoleKey struct {
	Role  string
	Skill string
}

// String formats the key as it is persisted: "Role" or "Role (Skill)".
func (k RoleKey) String() string {
	if k.Skill == "" {
		return k.Role
	}
	return fmt.Sprintf("%s (%s)", k.Role, k.Skill)
}

// ParseRole is the inverse of RoleKey.String.
func ParseRole(s string) RoleKey {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ")") {
		if i := strings.LastIndex(s, " ("); i > 0 {
			return RoleKey{Role: s[:i], Skill: s[i+2 : len(s)-1]}
		}
	}
	return RoleKey{Role: s}
}

// MarshalText encodes the key in its persisted form.
func (k RoleKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a persisted role string.
func (k *RoleKey) UnmarshalText(b []byte) error {
	*k = ParseRole(string(b))
	return nil
}
