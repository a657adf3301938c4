package domain

// Label is the MACD-derived class of a candle before re-encoding.
type Label int

const (
	LabelNeutral Label = 0 // Undecided; MACD equals its signal line or is not defined yet
	LabelBullish Label = 1 // MACD above signal; "correct" once re-encoded
	LabelBearish Label = 2 // MACD below signal; "incorrect" once re-encoded
)

// Encoded classes handed to the classifier.
const (
	ClassCorrect   = 0
	ClassIncorrect = 1
)

// IsDecided reports whether the label belongs to the set kept for training.
// Any value other than bullish or bearish is treated as undecided.
func (l Label) IsDecided() bool {
	return l == LabelBullish || l == LabelBearish
}

// Encode maps a decided label onto the {0,1} classifier encoding.
// The second return value is false for undecided labels.
func (l Label) Encode() (int, bool) {
	if !l.IsDecided() {
		return 0, false
	}
	return int(l) - 1, true
}

// String returns the name of the label.
func (l Label) String() string {
	switch l {
	case LabelNeutral:
		return "neutral"
	case LabelBullish:
		return "bullish"
	case LabelBearish:
		return "bearish"
	default:
		return "unknown"
	}
}
