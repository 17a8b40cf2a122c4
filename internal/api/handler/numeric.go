package handler

import (
	"bytes"
	"encoding/json"
	"strings"
)

// numericText keeps the raw text of a JSON number or numeric string so the
// service layer can parse it strictly. Anything else (true, {}, "abc") is
// kept verbatim and rejected there instead of silently becoming zero.
type numericText struct {
	text string
	set  bool
}

func (n *numericText) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	n.set = true
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.text = strings.TrimSpace(s)
		return nil
	}
	n.text = string(b)
	return nil
}

func (n numericText) MarshalJSON() ([]byte, error) {
	if !n.set {
		return []byte("null"), nil
	}
	return json.Marshal(n.text)
}

// ptr returns nil when the field was absent or null.
func (n numericText) ptr() *string {
	if !n.set {
		return nil
	}
	s := n.text
	return &s
}
