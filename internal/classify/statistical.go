package classify

import (
	"math"

	"github.com/tahasheikh786/commission-tracker-sub003/internal/model"
)

// StatisticalStrategy scores each row of a table on how far it deviates
// from the table's typical shape. Scores are bounded to [0, 1].
type StatisticalStrategy interface {
	Score(table *model.Table) []float64
}

// ZScoreStrategy is the default arithmetic outlier scorer. It combines
// deviation of a row's populated-column count from the modal count with
// a z-score over average cell text length.
type ZScoreStrategy struct {
	// Saturation is the z-score at which the length component reaches
	// its maximum contribution.
	Saturation float64
}

// NewZScoreStrategy returns a strategy with the default saturation of 3.
func NewZScoreStrategy() *ZScoreStrategy {
	return &ZScoreStrategy{Saturation: 3.0}
}

// Score implements StatisticalStrategy.
func (z *ZScoreStrategy) Score(table *model.Table) []float64 {
	n := len(table.Rows)
	scores := make([]float64, n)
	if n < 3 {
		// Too few rows for deviation to mean anything.
		return scores
	}

	populated := make([]int, n)
	avgLen := make([]float64, n)
	for i, row := range table.Rows {
		populated[i] = nonEmptyCells(row)
		total := 0
		for _, cell := range row {
			total += len(cell)
		}
		if len(row) > 0 {
			avgLen[i] = float64(total) / float64(len(row))
		}
	}

	mode := modalCount(populated)
	mean, stddev := meanStddev(avgLen)

	sat := z.Saturation
	if sat <= 0 {
		sat = 3.0
	}

	for i := range table.Rows {
		colDev := 0.0
		if mode > 0 {
			colDev = math.Abs(float64(populated[i]-mode)) / float64(mode)
			if colDev > 1 {
				colDev = 1
			}
		}

		lenDev := 0.0
		if stddev > 0 {
			zscore := math.Abs(avgLen[i]-mean) / stddev
			lenDev = zscore / sat
			if lenDev > 1 {
				lenDev = 1
			}
		}

		scores[i] = 0.5*colDev + 0.5*lenDev
	}

	return scores
}

// modalCount returns the most frequent value in counts.
func modalCount(counts []int) int {
	freq := make(map[int]int, len(counts))
	mode, best := 0, 0
	for _, c := range counts {
		freq[c]++
		if freq[c] > best {
			best = freq[c]
			mode = c
		}
	}
	return mode
}

// meanStddev returns the mean and population standard deviation of vals.
func meanStddev(vals []float64) (float64, float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))

	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(vals))
	return mean, math.Sqrt(variance)
}
