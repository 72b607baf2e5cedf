// Package ingest reads resume files into raw text plus layout metadata.
package ingest

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for files that are neither PDF nor DOCX.
var ErrUnsupportedFormat = errors.New("unsupported file format: PDF/DOCX only")

// Block is a positioned run of text on a page. Coordinates grow downwards.
type Block struct {
	Page int     `json:"page"`
	X0   float64 `json:"x0"`
	Y0   float64 `json:"y0"`
	X1   float64 `json:"x1"`
	Y1   float64 `json:"y1"`
	Text string  `json:"text"`
}

// Image describes an embedded picture without its pixel data.
type Image struct {
	Page   int    `json:"page"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Ext    string `json:"ext"`
}

// RawDocument is the immutable result of reading one file.
type RawDocument struct {
	Text      string  `json:"text"`
	Blocks    []Block `json:"blocks"`
	Images    []Image `json:"images"`
	PageCount int     `json:"page_count"`
}

// Reader extracts documents from disk.
type Reader struct {
	logger *zap.Logger
}

// New constructs a Reader. A nil logger disables logging.
func New(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// Read dispatches on the file extension.
func (r *Reader) Read(path string) (*RawDocument, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return r.readPDF(path)
	case ".docx":
		return r.readDOCX(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// SortBlocks orders blocks top to bottom, then left to right, comparing
// coordinates rounded to one decimal.
func SortBlocks(blocks []Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		yi, yj := round1(blocks[i].Y0), round1(blocks[j].Y0)
		if yi != yj {
			return yi < yj
		}
		return round1(blocks[i].X0) < round1(blocks[j].X0)
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
