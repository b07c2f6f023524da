package notegrid

import "github.com/stridelab/stepscan/algorithms/timing"

// ComputeTimingAwareStats recounts arrow statistics over pre-extracted
// rows, skipping rows the player never judges because a warp skips them
// or a fake region covers them. Hold state still advances through
// skipped rows so releases stay balanced.
func ComputeTimingAwareStats(rows [][]byte, rowToBeat []float32, td *timing.Data) ArrowStats {
	var stats ArrowStats
	for i, row := range rows {
		if i >= len(rowToBeat) {
			break
		}
		if td.IsJudgableAtBeat(float64(rowToBeat[i])) {
			countLine(row, &stats)
			continue
		}
		for _, ch := range row {
			switch ch {
			case '2', '4':
				stats.Holding++
			case '3':
				if stats.Holding > 0 {
					stats.Holding--
				}
			}
		}
	}
	return stats
}

// ComputeTimingAwareStatsFromChart is ComputeTimingAwareStats for a
// minimized chart whose rows were not retained.
func ComputeTimingAwareStatsFromChart(minimized []byte, lanes int, rowToBeat []float32, td *timing.Data) ArrowStats {
	if lanes < 1 {
		lanes = 1
	}
	var stats ArrowStats
	rowIdx := 0
	for _, line := range splitLines(minimized) {
		line = trimCR(line)
		if len(line) == 0 || line[0] == ',' || line[0] == ';' {
			continue
		}
		if len(line) < lanes {
			continue
		}
		if rowIdx >= len(rowToBeat) {
			break
		}
		row := line[:lanes]
		if td.IsJudgableAtBeat(float64(rowToBeat[rowIdx])) {
			countLine(row, &stats)
		} else {
			for _, ch := range row {
				switch ch {
				case '2', '4':
					stats.Holding++
				case '3':
					if stats.Holding > 0 {
						stats.Holding--
					}
				}
			}
		}
		rowIdx++
	}
	return stats
}
