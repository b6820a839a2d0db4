package ui

import "strings"

var blocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as a row of block characters at most width wide,
// taking the maximum of each stride so narrow peaks stay visible
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	stride := (len(values) + width - 1) / width

	// Find max height for normalization
	maxHeight := 0.0
	for _, h := range values {
		maxHeight = max(maxHeight, h)
	}
	if maxHeight == 0 {
		maxHeight = 1.0 // Avoid division by zero
	}

	var result strings.Builder
	for i := 0; i < len(values); i += stride {
		height := 0.0
		for _, v := range values[i:min(i+stride, len(values))] {
			height = max(height, v)
		}

		blockIdx := int(height / maxHeight * float64(len(blocks)-1))
		blockIdx = max(0, min(blockIdx, len(blocks)-1))
		result.WriteRune(blocks[blockIdx])
	}

	return result.String()
}
