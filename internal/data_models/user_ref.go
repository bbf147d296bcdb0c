package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// UserRef is a reference to a user that arrives either as a bare id string
// or as an expanded user object. Only the id is used.
type UserRef struct {
	ID string
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.ID = ""
		return nil
	}

	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}

	var expanded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &expanded); err != nil {
		return fmt.Errorf("user reference must be an id or an object with an id: %w", err)
	}
	r.ID = expanded.ID
	return nil
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID)
}
