// Package normalize converts raw XML and JSON response bodies into the
// canonical value tree.
package normalize

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// TextKey holds an element's character data when it also carries
// attributes or children.
const TextKey = "$text"

// AttrPrefix is prepended to attribute names.
const AttrPrefix = "@"

var xmlnsPattern = regexp.MustCompile(`\s*xmlns(?::\w+)?="[^"]*"`)

// XMLOptions controls XML normalization.
type XMLOptions struct {
	StripNamespaces bool
	CleanContent    bool
}

// StripNamespaces removes namespace declarations and the Dublin Core
// prefixes used by OAI-PMH feeds.
func StripNamespaces(s string) string {
	s = xmlnsPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "oai_dc:", "")
	return strings.ReplaceAll(s, "dc:", "")
}

// frame is an element under construction.
type frame struct {
	name string
	obj  map[string]any
	text strings.Builder
}

// XML parses data into a tree keyed by the root element name. Attributes
// become "@name" entries, character data becomes "$text", an element holding
// only text collapses to a string, and repeated sibling elements become an
// array in document order.
func XML(data []byte, opts XMLOptions) (map[string]any, error) {
	if opts.StripNamespaces {
		data = []byte(StripNamespaces(string(data)))
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader
	dec.Entity = xml.HTMLEntity

	var (
		stack []*frame
		root  map[string]any
	)

	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed("xml", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if root != nil {
				return nil, malformed("xml", fmt.Errorf("multiple root elements"))
			}
			f := &frame{name: qualifiedName(t.Name), obj: make(map[string]any)}
			for _, attr := range t.Attr {
				f.obj[AttrPrefix+qualifiedName(attr.Name)] = attr.Value
			}
			stack = append(stack, f)

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, malformed("xml", fmt.Errorf("unexpected closing tag </%s>", qualifiedName(t.Name)))
			}
			f := stack[len(stack)-1]
			if name := qualifiedName(t.Name); name != f.name {
				return nil, malformed("xml", fmt.Errorf("closing tag </%s> does not match <%s>", name, f.name))
			}
			stack = stack[:len(stack)-1]

			v := f.value()
			if len(stack) == 0 {
				root = map[string]any{f.name: v}
				continue
			}
			insert(stack[len(stack)-1].obj, f.name, v)
		}
	}

	if len(stack) > 0 {
		return nil, malformed("xml", fmt.Errorf("unclosed element <%s>", stack[len(stack)-1].name))
	}
	if root == nil {
		return nil, malformed("xml", fmt.Errorf("no root element"))
	}

	if opts.CleanContent {
		root = Clean(root).(map[string]any)
	}
	return root, nil
}

// value finalizes a closed element.
func (f *frame) value() any {
	if text := strings.TrimSpace(f.text.String()); text != "" {
		if len(f.obj) == 0 {
			return text
		}
		f.obj[TextKey] = text
	}
	return f.obj
}

// insert adds a closed child element to its parent, promoting the entry to
// an array on the second occurrence of the same tag.
func insert(parent map[string]any, key string, v any) {
	existing, ok := parent[key]
	if !ok {
		parent[key] = v
		return
	}
	if arr, isArr := existing.([]any); isArr {
		parent[key] = append(arr, v)
		return
	}
	parent[key] = []any{existing, v}
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return enc.NewDecoder().Reader(input), nil
}
