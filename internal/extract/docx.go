package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// readDocxText returns the paragraph texts of a DOCX in document order,
// one paragraph per line.
func readDocxText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty docx data")
	}
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("docx reader panic: %v", r)
		}
	}()

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	paragraphs, err := paragraphTexts(doc.Editable().GetContent())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(paragraphs, "\n")), nil
}

// paragraphTexts walks WordprocessingML and collects the text of each w:p.
// Tabs and breaks inside a paragraph are kept as whitespace.
func paragraphTexts(documentXML string) ([]string, error) {
	decoder := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
		depth      int
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				if depth == 0 {
					current.Reset()
				}
				depth++
			case "t":
				inText = true
			case "tab":
				current.WriteString("\t")
			case "br", "cr":
				current.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
