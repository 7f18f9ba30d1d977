package ir

import (
	"encoding/json"
	"strings"
)

// Privilege is the closed set of grantable privileges.
type Privilege string

const (
	PrivSelect Privilege = "SELECT"
	PrivInsert Privilege = "INSERT"
	PrivUpdate Privilege = "UPDATE"
	PrivDelete Privilege = "DELETE"
	PrivAll    Privilege = "ALL PRIVILEGES"
)

// Valid reports whether p is a known privilege.
func (p Privilege) Valid() bool {
	switch p {
	case PrivSelect, PrivInsert, PrivUpdate, PrivDelete, PrivAll:
		return true
	}
	return false
}

// PrivilegeSpec is the body shared by GRANT and REVOKE.
type PrivilegeSpec struct {
	Privileges []Privilege `json:"privileges"`
	On         string      `json:"on"`                // table, may be qualified
	Columns    []string    `json:"columns,omitempty"` // column-level privileges
	To         string      `json:"to"`                // principal (user or role)
	Host       string      `json:"host,omitempty"`    // MySQL account host
}

func normalizePrivileges(ps []Privilege) {
	for i, p := range ps {
		up := strings.ToUpper(strings.TrimSpace(string(p)))
		if up == "ALL" {
			up = string(PrivAll)
		}
		ps[i] = Privilege(up)
	}
}

// Grant describes GRANT.
type Grant struct {
	Meta
	PrivilegeSpec
	WithGrantOption bool `json:"with_grant_option,omitempty"`
}

// Revoke describes REVOKE. The principal is the key "from" or "to".
type Revoke struct {
	Meta
	PrivilegeSpec
}

// UnmarshalJSON normalises privilege spellings.
func (g *Grant) UnmarshalJSON(data []byte) error {
	type alias Grant
	if err := json.Unmarshal(data, (*alias)(g)); err != nil {
		return err
	}
	normalizePrivileges(g.Privileges)
	return nil
}

// UnmarshalJSON normalises privilege spellings and accepts "from" for the
// principal.
func (r *Revoke) UnmarshalJSON(data []byte) error {
	type alias Revoke
	aux := struct {
		*alias
		From string `json:"from"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.To == "" {
		r.To = aux.From
	}
	normalizePrivileges(r.Privileges)
	return nil
}

func (*Grant) Category() Category  { return DCL }
func (*Revoke) Category() Category { return DCL }

func (*Grant) Operation() Operation  { return OpGrant }
func (*Revoke) Operation() Operation { return OpRevoke }

func (*Grant) statement()  {}
func (*Revoke) statement() {}
