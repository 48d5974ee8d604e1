package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter renders a report as a pretty-printed JSON document.
type JSONFormatter struct{}

// Format writes the report as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
