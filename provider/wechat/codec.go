package wechat

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"paygate/provider"
)

// encodeXML serializes a flat parameter map as the <xml> document WeChat Pay
// expects: one same-named element per key, values wrapped in CDATA. Keys are
// written in sorted order so the output is reproducible.
func encodeXML(params map[string]string) []byte {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<xml>")
	for _, k := range keys {
		b.WriteString("<")
		b.WriteString(k)
		b.WriteString("><![CDATA[")
		b.WriteString(params[k])
		b.WriteString("]]></")
		b.WriteString(k)
		b.WriteString(">")
	}
	b.WriteString("</xml>")
	return []byte(b.String())
}

// decodeXML parses a flat WeChat Pay XML document into a parameter map.
// Only elements directly under the root are collected; CDATA and plain
// character data are treated alike.
func decodeXML(data []byte) (map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	params := make(map[string]string)

	var current string
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", provider.ErrParse, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				current = t.Name.Local
			}
		case xml.EndElement:
			depth--
			current = ""
		case xml.CharData:
			if depth == 2 && current != "" {
				params[current] += string(t)
			}
		}
	}

	if len(params) == 0 {
		return nil, fmt.Errorf("%w: empty XML document", provider.ErrParse)
	}
	return params, nil
}
