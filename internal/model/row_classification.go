package model

// Signal names the independent indicators a row classification can draw on.
type Signal string

// Classification signal constants.
const (
	SignalKeyword     Signal = "keyword"
	SignalStructural  Signal = "structural"
	SignalStatistical Signal = "statistical"
	SignalPositional  Signal = "positional"
)

// RowClassification is the per-row verdict of the summary-row classifier.
// It is ephemeral; confirmed indices fold into Table.SummaryRowIndices.
type RowClassification struct {
	Signals    []Signal
	RowIndex   int
	Confidence float64
	IsSummary  bool
	IsBlank    bool
}

// HasSignal reports whether the named signal contributed to this classification.
func (c RowClassification) HasSignal(s Signal) bool {
	for _, got := range c.Signals {
		if got == s {
			return true
		}
	}
	return false
}
