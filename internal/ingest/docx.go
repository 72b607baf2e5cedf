package ingest

import (
	"fmt"
	"strings"

	"baliance.com/gooxml/document"
	"go.uber.org/zap"
)

func (r *Reader) readDOCX(path string) (*RawDocument, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening docx %q: %w", path, err)
	}

	paragraphs := doc.Paragraphs()
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		var b strings.Builder
		for _, run := range p.Runs() {
			b.WriteString(run.Text())
		}
		lines = append(lines, b.String())
	}

	r.logger.Debug("docx extracted", zap.Int("paragraphs", len(paragraphs)))

	return &RawDocument{Text: strings.Join(lines, "\n")}, nil
}
