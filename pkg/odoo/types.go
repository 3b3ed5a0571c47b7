package odoo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Domain is an Odoo search domain: a flat list of [field, operator, value]
// triples interleaved with prefix operators such as "|" and "&".
type Domain []interface{}

// Values holds the field payload for create and write calls.
type Values map[string]interface{}

// Where builds a single domain criterion.
func Where(field, operator string, value interface{}) []interface{} {
	return []interface{}{field, operator, value}
}

// And returns a copy of the domain extended with extra terms.
func (d Domain) And(terms ...interface{}) Domain {
	out := make(Domain, 0, len(d)+len(terms))
	out = append(out, d...)
	return append(out, terms...)
}

// Prefix operators used in domains.
const (
	OpOr  = "|"
	OpAnd = "&"
	OpNot = "!"
)

// ReplaceIDs encodes the x2many "replace with" command (6, 0, ids).
func ReplaceIDs(ids []int64) []interface{} {
	if ids == nil {
		ids = []int64{}
	}
	return []interface{}{[]interface{}{6, 0, ids}}
}

var falseLiteral = []byte("false")

func isFalsy(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) == 0 || bytes.Equal(b, falseLiteral) || bytes.Equal(b, []byte("null"))
}

// Many2One decodes the Odoo relational tuple [id, "display name"] or false.
type Many2One struct {
	ID    int64
	Name  string
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Many2One) UnmarshalJSON(b []byte) error {
	*m = Many2One{}
	if isFalsy(b) {
		return nil
	}
	var tuple []json.RawMessage
	if err := json.Unmarshal(b, &tuple); err != nil {
		// some computed fields return the bare id
		var id int64
		if idErr := json.Unmarshal(b, &id); idErr == nil {
			m.ID, m.Valid = id, true
			return nil
		}
		return fmt.Errorf("decode many2one: %w", err)
	}
	if len(tuple) == 0 {
		return nil
	}
	if err := json.Unmarshal(tuple[0], &m.ID); err != nil {
		return fmt.Errorf("decode many2one id: %w", err)
	}
	m.Valid = true
	if len(tuple) > 1 {
		var name String
		if err := json.Unmarshal(tuple[1], &name); err != nil {
			return fmt.Errorf("decode many2one name: %w", err)
		}
		m.Name = string(name)
	}
	return nil
}

// MarshalJSON writes the id, or false when unset, which is what write/create expect.
func (m Many2One) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return falseLiteral, nil
	}
	return json.Marshal(m.ID)
}

// String decodes text fields which Odoo reports as false when empty.
type String string

// UnmarshalJSON implements json.Unmarshaler.
func (s *String) UnmarshalJSON(b []byte) error {
	if isFalsy(b) {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = String(v)
	return nil
}

// Float decodes numeric fields which may be reported as false.
type Float float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(b []byte) error {
	if isFalsy(b) {
		*f = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Int decodes integer values which may be reported as false, such as the uid of a failed login.
type Int int64

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(b []byte) error {
	if isFalsy(b) {
		*i = 0
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*i = Int(v)
	return nil
}
