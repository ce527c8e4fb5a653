// Package dataset provides label handling for the Speech Commands audio
// dataset (v0.02).
package dataset

import "fmt"

// Label identifies one of the 37 raw Speech Commands classes. Values 0-34
// are spoken words, 35 is silence and 36 is the catch-all "other" class.
type Label int

const (
	LabelYes Label = iota
	LabelNo
	LabelUp
	LabelDown
	LabelLeft
	LabelRight
	LabelOn
	LabelOff
	LabelStop
	LabelGo
	LabelZero
	LabelOne
	LabelTwo
	LabelThree
	LabelFour
	LabelFive
	LabelSix
	LabelSeven
	LabelEight
	LabelNine
	LabelBed
	LabelBird
	LabelCat
	LabelDog
	LabelHappy
	LabelHouse
	LabelMarvin
	LabelSheila
	LabelTree
	LabelWow
	LabelBackward
	LabelForward
	LabelFollow
	LabelLearn
	LabelVisual
	LabelSilence
	LabelOther
)

// NumLabels is the number of raw classes in the dataset.
const NumLabels = 37

// NumClasses is the number of classes after collapsing the rarely-used words
// into LabelOther: the ten command words, the ten digits, silence and other.
const NumClasses = 22

var labelNames = [NumLabels]string{
	"yes", "no", "up", "down", "left", "right", "on", "off", "stop", "go",
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"bed", "bird", "cat", "dog", "happy", "house", "marvin", "sheila", "tree", "wow",
	"backward", "forward", "follow", "learn", "visual",
	"_silence_", "_other_",
}

func (l Label) String() string {
	if l < 0 || l >= NumLabels {
		return fmt.Sprintf("label(%d)", int(l))
	}
	return labelNames[l]
}

// ParseLabel returns the label for a directory name from the dataset archive.
func ParseLabel(name string) (Label, error) {
	for i, n := range labelNames {
		if n == name {
			return Label(i), nil
		}
	}
	return LabelOther, fmt.Errorf("dataset: unknown label %q", name)
}

// Collapse maps a raw label to the 22-class training target: the command
// words and digits keep their own class, silence stays silence, and every
// remaining word becomes LabelOther.
func (l Label) Collapse() Label {
	switch {
	case l >= LabelYes && l <= LabelNine:
		return l
	case l == LabelSilence:
		return LabelSilence
	default:
		return LabelOther
	}
}

// ClassIndex returns the contiguous training target in [0, NumClasses) for
// the collapsed label: 0-19 for the kept words and digits, 20 for silence,
// 21 for other.
func (l Label) ClassIndex() int {
	collapsed := l.Collapse()
	switch collapsed {
	case LabelSilence:
		return NumClasses - 2
	case LabelOther:
		return NumClasses - 1
	default:
		return int(collapsed)
	}
}
