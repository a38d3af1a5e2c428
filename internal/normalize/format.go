package normalize

import "fmt"

// Format type names accepted in configuration.
const (
	FormatXML  = "xml"
	FormatJSON = "json"
)

// Format is the response_format table of a retriever configuration.
type Format struct {
	Type            string `toml:"type" json:"type"`
	StripNamespaces bool   `toml:"strip_namespaces" json:"strip_namespaces,omitempty"`
	CleanContent    bool   `toml:"clean_content" json:"clean_content,omitempty"`
}

// Validate checks the format type.
func (f Format) Validate() error {
	switch f.Type {
	case FormatXML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("unknown response format %q", f.Type)
	}
}

// Parse normalizes a response body according to the configured format.
func (f Format) Parse(data []byte) (any, error) {
	switch f.Type {
	case FormatXML:
		return XML(data, XMLOptions{StripNamespaces: f.StripNamespaces, CleanContent: f.CleanContent})
	case FormatJSON:
		return JSON(data, JSONOptions{CleanContent: f.CleanContent})
	default:
		return nil, fmt.Errorf("unknown response format %q", f.Type)
	}
}
