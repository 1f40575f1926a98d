package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/linkcast/internal/model"
	"github.com/nao1215/linkcast/internal/social"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because it is sufficient for our needs.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version is written into every envelope when set.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the linkcast version in each report.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// WithJSONDenyList sets the denylist used to group excluded social links.
func WithJSONDenyList(denyList []string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.denyList = denyList
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// ScanReport is the JSON envelope of a link scan.
//
// Design decision: We wrap the result rather than adding output fields to
// ScanResult so that the model stays free of presentation concerns.
type ScanReport struct {
	Version        string            `json:"version,omitempty"`
	Scan           *model.ScanResult `json:"scan"`
	ExcludedSocial []social.Group    `json:"excluded_social"`
}

// PublishEnvelope is the JSON envelope of a publish run.
type PublishEnvelope struct {
	Version string               `json:"version,omitempty"`
	Publish *model.PublishReport `json:"publish"`
}

// WriteScan outputs the scan result in JSON format.
func (w *JSONWriter) WriteScan(result *model.ScanResult) (int, error) {
	return w.WriteValue(&ScanReport{
		Version:        w.version,
		Scan:           result,
		ExcludedSocial: w.excludedGroups(result),
	})
}

// WritePublish outputs the publish report in JSON format.
func (w *JSONWriter) WritePublish(report *model.PublishReport) (int, error) {
	return w.WriteValue(&PublishEnvelope{
		Version: w.version,
		Publish: report,
	})
}

// WriteValue marshals any value with the writer's formatting.
// The history command uses it for stored scans and uploads.
func (w *JSONWriter) WriteValue(v interface{}) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
