package backend

import (
	"bytes"
	"encoding/json"
	"net/url"
)

// ID is a record identifier that the backend emits either as a JSON string or
// as a number. It always marshals back as a string.
type ID string

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// Path returns the identifier escaped for use as a URL path segment.
func (id ID) Path() string { return url.PathEscape(string(id)) }
