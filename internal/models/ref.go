package models

import (
	"bytes"
	"encoding/json"
)

// Ref is a weak reference to another entity. The backend sends it either as a
// bare id or as a populated document carrying display fields.
type Ref struct {
	ID             string `json:"_id"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// UnmarshalJSON decodes a string id, an object, or null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	type plain Ref
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Ref(aux.plain)
	if r.ID == "" {
		r.ID = aux.AltID
	}
	return nil
}
