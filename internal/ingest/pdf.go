package ingest

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	defaultPageHeight = 792.0
	defaultFontSize   = 10.0
	// Horizontal gap, in font sizes, that separates two blocks on one baseline.
	blockGapFactor = 4.0
	// Horizontal gap, in font sizes, rendered as a space between runs.
	wordGapFactor = 0.2
	// Vertical gap, in font sizes, under which a line joins the paragraph above it.
	lineGapFactor = 1.5
	// Left edge drift, in font sizes, tolerated within one paragraph.
	indentFactor = 2.0
)

var imageExtensions = map[string]string{
	"DCTDecode":      "jpeg",
	"JPXDecode":      "jpx",
	"FlateDecode":    "png",
	"CCITTFaxDecode": "tiff",
	"JBIG2Decode":    "jbig2",
}

func (r *Reader) readPDF(path string) (doc *RawDocument, err error) {
	// The pdf package panics on broken cross-references.
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("reading pdf %q: %v", path, rec)
		}
	}()

	f, rd, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %q: %w", path, err)
	}
	defer f.Close()

	doc = &RawDocument{PageCount: rd.NumPage()}
	pages := make([]string, 0, doc.PageCount)

	for num := 1; num <= doc.PageCount; num++ {
		page := rd.Page(num)
		if page.V.IsNull() {
			r.logger.Debug("skipping empty pdf page", zap.Int("page", num))
			continue
		}

		blocks := r.pageBlocks(page, num)
		SortBlocks(blocks)
		doc.Blocks = append(doc.Blocks, blocks...)

		parts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			if t := strings.TrimSpace(b.Text); t != "" {
				parts = append(parts, t)
			}
		}
		pages = append(pages, strings.TrimSpace(strings.Join(parts, "\n")))

		doc.Images = append(doc.Images, r.pageImages(page, num)...)
	}

	doc.Text = strings.TrimSpace(strings.Join(pages, "\n"))
	r.logger.Debug("pdf extracted",
		zap.Int("pages", doc.PageCount),
		zap.Int("blocks", len(doc.Blocks)),
		zap.Int("images", len(doc.Images)),
	)

	return doc, nil
}

func (r *Reader) pageBlocks(page pdf.Page, num int) (blocks []Block) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("skipping unreadable pdf page text", zap.Int("page", num), zap.Any("panic", rec))
			blocks = nil
		}
	}()

	return AssembleBlocks(page.Content().Text, pageHeight(page), num)
}

func (r *Reader) pageImages(page pdf.Page, num int) (images []Image) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("skipping pdf page resources", zap.Int("page", num), zap.Any("panic", rec))
		}
	}()

	xobjects := page.Resources().Key("XObject")
	for _, name := range xobjects.Keys() {
		if img, ok := r.imageMeta(xobjects, num, name); ok {
			images = append(images, img)
		}
	}
	return images
}

func (r *Reader) imageMeta(xobjects pdf.Value, page int, name string) (img Image, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("skipping malformed pdf image",
				zap.Int("page", page),
				zap.String("name", name),
				zap.Any("panic", rec),
			)
			ok = false
		}
	}()

	v := xobjects.Key(name)
	if v.Key("Subtype").Name() != "Image" {
		return Image{}, false
	}

	return Image{
		Page:   page,
		Width:  int(v.Key("Width").Int64()),
		Height: int(v.Key("Height").Int64()),
		Ext:    imageExt(v.Key("Filter")),
	}, true
}

func imageExt(filter pdf.Value) string {
	name := filter.Name()
	if filter.Kind() == pdf.Array && filter.Len() > 0 {
		name = filter.Index(filter.Len() - 1).Name()
	}
	if ext, ok := imageExtensions[name]; ok {
		return ext
	}
	return "raw"
}

func pageHeight(page pdf.Page) float64 {
	box := page.V.Key("MediaBox")
	if box.Len() != 4 {
		box = page.V.Key("Parent").Key("MediaBox")
	}
	if box.Len() != 4 {
		return defaultPageHeight
	}
	if h := box.Index(3).Float64() - box.Index(1).Float64(); h > 0 {
		return h
	}
	return defaultPageHeight
}

// AssembleBlocks groups positioned glyph runs into paragraph blocks. Runs sharing
// a baseline are joined left to right and a wide horizontal gap splits them, so
// side-by-side columns stay apart. A line then joins the paragraph directly
// above it in the same column.
func AssembleBlocks(runs []pdf.Text, height float64, page int) []Block {
	return mergeParagraphs(lineSegments(runs, height, page))
}

// lineSegments returns one block per baseline segment, top of the page first.
func lineSegments(runs []pdf.Text, height float64, page int) []Block {
	lines := make(map[float64][]pdf.Text)
	var baselines []float64
	for _, run := range runs {
		if run.S == "" {
			continue
		}
		key := math.Round(run.Y)
		if _, ok := lines[key]; !ok {
			baselines = append(baselines, key)
		}
		lines[key] = append(lines[key], run)
	}
	// Top of the page first: PDF y grows upwards.
	sort.Sort(sort.Reverse(sort.Float64Slice(baselines)))

	var blocks []Block
	for _, y := range baselines {
		line := lines[y]
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })

		var (
			cur     *Block
			b       strings.Builder
			prevEnd float64
			maxSize float64
		)
		flush := func() {
			if cur == nil {
				return
			}
			cur.Text = strings.TrimSpace(b.String())
			cur.Y1 = height - y
			cur.Y0 = cur.Y1 - maxSize
			if cur.Text != "" {
				blocks = append(blocks, *cur)
			}
			cur, maxSize = nil, 0
			b.Reset()
		}

		for _, run := range line {
			size := run.FontSize
			if size <= 0 {
				size = defaultFontSize
			}

			gap := run.X - prevEnd
			if cur != nil && gap > blockGapFactor*size {
				flush()
			}
			if cur == nil {
				cur = &Block{Page: page, X0: run.X}
			} else if gap > wordGapFactor*size && !endsWithSpace(&b) && !strings.HasPrefix(run.S, " ") {
				b.WriteByte(' ')
			}

			b.WriteString(run.S)
			prevEnd = run.X + run.W
			cur.X1 = prevEnd
			maxSize = math.Max(maxSize, size)
		}
		flush()
	}

	return blocks
}

// mergeParagraphs appends each segment to the lowest paragraph sharing its left
// edge when the vertical gap between them is small.
func mergeParagraphs(lines []Block) []Block {
	var paras []Block
	for _, ln := range lines {
		size := ln.Y1 - ln.Y0
		if size <= 0 {
			size = defaultFontSize
		}

		merged := false
		for i := len(paras) - 1; i >= 0; i-- {
			p := &paras[i]
			if math.Abs(p.X0-ln.X0) > indentFactor*size {
				continue
			}
			if gap := ln.Y0 - p.Y1; gap >= -size/2 && gap <= lineGapFactor*size {
				p.Text += "\n" + ln.Text
				p.X0 = math.Min(p.X0, ln.X0)
				p.X1 = math.Max(p.X1, ln.X1)
				p.Y1 = ln.Y1
				merged = true
			}
			break
		}
		if !merged {
			paras = append(paras, ln)
		}
	}
	return paras
}

func endsWithSpace(b *strings.Builder) bool {
	s := b.String()
	return s == "" || strings.HasSuffix(s, " ")
}
