package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Insight is a theme, risk factor or contrarian view. Older snapshots store
// these as bare strings, newer ones as {title, explanation}; both decode into
// this shape, with Explanation left empty for the bare form.
type Insight struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation,omitempty"`
}

// HasExplanation reports whether the insight came with supporting text.
func (i Insight) HasExplanation() bool {
	return i.Explanation != ""
}

// UnmarshalJSON accepts either a JSON string or a {title, explanation} object.
func (i *Insight) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*i = Insight{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Insight{Title: s}
		return nil
	case '{':
		type structured Insight
		var v structured
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*i = Insight(v)
		return nil
	default:
		return fmt.Errorf("insight: expected string or object, got %.20s", data)
	}
}
