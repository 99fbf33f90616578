package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleAdmin     = "ROLE_ADMIN"
	RoleAdminBare = "ADMIN"
	RoleUser      = "ROLE_USER"
)

// ID is an opaque identifier. The backend sends it as a JSON number or a
// string; both decode to the same textual value.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Identity is the normalized authenticated principal.
type Identity struct {
	ID       ID       `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email,omitempty"`
	Roles    []string `json:"roles"`
	Active   bool     `json:"active"`
}

// IsAdmin reports whether any canonical role is ROLE_ADMIN or ADMIN.
func (i *Identity) IsAdmin() bool {
	if i == nil {
		return false
	}
	return HasAdminRole(i.Roles)
}

// HasAdminRole checks canonical role strings, case-sensitively.
func HasAdminRole(roles []string) bool {
	for _, r := range roles {
		if r == RoleAdmin || r == RoleAdminBare {
			return true
		}
	}
	return false
}

// rawIdentity mirrors the loose payloads returned by signin, /auth/me and
// profile updates.
type rawIdentity struct {
	ID       ID              `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Roles    json.RawMessage `json:"roles"`
	Active   *bool           `json:"active"`
}

// NormalizeIdentity builds an Identity from a raw response body. Applying it
// to the JSON encoding of its own output yields an equal Identity.
func NormalizeIdentity(raw []byte) (*Identity, error) {
	var in rawIdentity
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if strings.TrimSpace(in.Username) == "" {
		return nil, fmt.Errorf("%w: missing username", ErrInvalidIdentity)
	}

	roles, err := NormalizeRoles(in.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []string{RoleUser}
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return &Identity{
		ID:       in.ID,
		Username: in.Username,
		Email:    in.Email,
		Roles:    roles,
		Active:   active,
	}, nil
}

// roleDescriptor decodes either a bare string or an object carrying a name or
// authority field.
type roleDescriptor string

func (r *roleDescriptor) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = roleDescriptor(s)
		return nil
	}
	var obj struct {
		Name      string `json:"name"`
		Authority string `json:"authority"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("%w: role descriptor: %v", ErrInvalidIdentity, err)
	}
	if obj.Name != "" {
		*r = roleDescriptor(obj.Name)
	} else {
		*r = roleDescriptor(obj.Authority)
	}
	return nil
}

// NormalizeRoles converts any accepted role representation into a canonical
// string set, preserving first occurrence order. A single descriptor outside
// an array is accepted too.
func NormalizeRoles(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var list []roleDescriptor
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: roles: %v", ErrInvalidIdentity, err)
		}
	} else {
		var one roleDescriptor
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("%w: roles: %v", ErrInvalidIdentity, err)
		}
		list = []roleDescriptor{one}
	}

	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, r := range list {
		s := string(r)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// SessionState is derived from the session store on every read.
type SessionState struct {
	Identity        *Identity `json:"user,omitempty"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	IsAdmin         bool      `json:"isAdmin"`
	Loading         bool      `json:"loading"`
	Error           string    `json:"error,omitempty"`
	// Epoch identifies the session a request was issued under.
	Epoch uint64 `json:"-"`
}

// Credentials is the login payload.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the registration payload.
type SignupRequest struct {
	Username string   `json:"username" validate:"required,min=3"`
	Email    string   `json:"email"    validate:"required,email"`
	Password string   `json:"password" validate:"required,min=6"`
	Roles    []string `json:"roles,omitempty"`
}
