package weasyreport

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Compile-time interface check.
var _ Merger = (*PDFCPUMerger)(nil)

// PDFCPUMerger merges PDF documents with pdfcpu.
type PDFCPUMerger struct {
	conf *model.Configuration
}

// NewPDFCPUMerger creates a merger with pdfcpu's default configuration,
// relaxed validation so engine output with minor defects still merges.
func NewPDFCPUMerger() *PDFCPUMerger {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUMerger{conf: conf}
}

// Merge concatenates the pages of docs in order. No divider pages are
// inserted and no page is dropped.
func (m *PDFCPUMerger) Merge(ctx context.Context, docs []*Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch len(docs) {
	case 0:
		return []byte{}, nil
	case 1:
		return docs[0].PDF, nil
	}

	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		if d == nil || len(d.PDF) == 0 {
			return nil, fmt.Errorf("%w: document %d is empty", ErrMergeFailed, i)
		}
		readers[i] = bytes.NewReader(d.PDF)
	}

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, m.conf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMergeFailed, err)
	}
	return out.Bytes(), nil
}

// PageCount returns the number of pages in a PDF.
func (m *PDFCPUMerger) PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), m.conf)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}
