package ingest

import "math"

const columnBucket = 50

// Layout summarizes the column structure of a document.
type Layout struct {
	Multicolumn   bool `json:"multicolumn"`
	NumColumnsEst int  `json:"num_columns_est"`
}

// DetectLayout buckets block left edges into 50pt bands. Bands holding at least
// two blocks count as columns.
func DetectLayout(blocks []Block) Layout {
	if len(blocks) == 0 {
		return Layout{NumColumnsEst: 1}
	}

	clusters := make(map[int]int)
	for _, b := range blocks {
		x := int(math.Round(b.X0))
		clusters[floorDiv(x, columnBucket)*columnBucket]++
	}

	columns := 0
	for _, n := range clusters {
		if n >= 2 {
			columns++
		}
	}

	if columns >= 2 {
		return Layout{Multicolumn: true, NumColumnsEst: columns}
	}
	return Layout{NumColumnsEst: 1}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
