package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXMLRepeatedSiblingsBecomeArray(t *testing.T) {
	data := []byte(`<entry><author><name>A</name></author><author><name>B</name></author></entry>`)

	got, err := XML(data, XMLOptions{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"entry": map[string]any{
			"author": []any{
				map[string]any{"name": "A"},
				map[string]any{"name": "B"},
			},
		},
	}, got)
}

func TestXMLSiblingOrderPreserved(t *testing.T) {
	data := []byte(`<list><i>1</i><i>2</i><i>3</i><i>4</i><other/></list>`)

	got, err := XML(data, XMLOptions{})
	require.NoError(t, err)

	list := got["list"].(map[string]any)
	assert.Equal(t, []any{"1", "2", "3", "4"}, list["i"])
}

func TestXMLAttributesAndText(t *testing.T) {
	data := []byte(`<feed><link href="https://arxiv.org/abs/1" rel="alternate"/><title type="text">Hello</title></feed>`)

	got, err := XML(data, XMLOptions{})
	require.NoError(t, err)

	feed := got["feed"].(map[string]any)
	assert.Equal(t, map[string]any{"@href": "https://arxiv.org/abs/1", "@rel": "alternate"}, feed["link"])
	assert.Equal(t, map[string]any{"@type": "text", "$text": "Hello"}, feed["title"])
}

func TestXMLTextOnlyCollapses(t *testing.T) {
	got, err := XML([]byte(`<a><b>  value  </b></a>`), XMLOptions{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": "value"}}, got)
}

func TestXMLEntities(t *testing.T) {
	got, err := XML([]byte(`<a>Fish &amp; Chips&nbsp;Co</a>`), XMLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Fish & Chips Co", got["a"])
}

func TestXMLStripNamespaces(t *testing.T) {
	data := []byte(`<oai_dc:dc xmlns:oai_dc="http://www.openarchives.org/OAI/2.0/oai_dc/" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>Plonk</dc:title><dc:creator>Gabizon</dc:creator><dc:creator>Williamson</dc:creator></oai_dc:dc>`)

	got, err := XML(data, XMLOptions{StripNamespaces: true})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"dc": map[string]any{
			"title":   "Plonk",
			"creator": []any{"Gabizon", "Williamson"},
		},
	}, got)
}

func TestXMLKeepsPrefixesWithoutStripping(t *testing.T) {
	data := []byte(`<feed xmlns:arxiv="http://arxiv.org/schemas/atom"><arxiv:comment>12 pages</arxiv:comment></feed>`)

	got, err := XML(data, XMLOptions{})
	require.NoError(t, err)

	feed := got["feed"].(map[string]any)
	assert.Equal(t, "12 pages", feed["arxiv:comment"])
	assert.Equal(t, "http://arxiv.org/schemas/atom", feed["@xmlns:arxiv"])
}

func TestXMLCleanContent(t *testing.T) {
	data := []byte("<a><summary>  line one\n   line <i>two</i>\n</summary></a>")

	got, err := XML(data, XMLOptions{CleanContent: true})
	require.NoError(t, err)
	assert.Equal(t, "line one line", got["a"].(map[string]any)["summary"].(map[string]any)["$text"])
}

func TestXMLCharset(t *testing.T) {
	// 0xE9 is "é" in ISO-8859-1.
	data := append([]byte(`<?xml version="1.0" encoding="ISO-8859-1"?><t>caf`), 0xE9, '<', '/', 't', '>')

	got, err := XML(data, XMLOptions{})
	require.NoError(t, err)
	assert.Equal(t, "café", got["t"])
}

func TestXMLMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unclosed", "<a><b>x</b>"},
		{"mismatched", "<a><b>x</c></a>"},
		{"empty", ""},
		{"two roots", "<a/><b/>"},
		{"garbage", "<a <b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := XML([]byte(tt.data), XMLOptions{})
			require.Error(t, err)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestStripNamespaces(t *testing.T) {
	in := `<root xmlns="http://a" xmlns:dc="http://b"><dc:title>T</dc:title></root>`
	assert.Equal(t, `<root><title>T</title></root>`, StripNamespaces(in))
}
