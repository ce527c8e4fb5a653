package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelString(t *testing.T) {
	assert.Equal(t, "yes", LabelYes.String())
	assert.Equal(t, "nine", LabelNine.String())
	assert.Equal(t, "_silence_", LabelSilence.String())
	assert.Equal(t, "_other_", LabelOther.String())
	assert.Equal(t, "label(99)", Label(99).String())
}

func TestParseLabel(t *testing.T) {
	l, err := ParseLabel("marvin")
	require.NoError(t, err)
	assert.Equal(t, LabelMarvin, l)

	_, err = ParseLabel("mandarin")
	assert.Error(t, err)
}

func TestCollapse(t *testing.T) {
	// Command words and digits keep their class.
	assert.Equal(t, LabelYes, LabelYes.Collapse())
	assert.Equal(t, LabelNine, LabelNine.Collapse())
	// Silence stays silence.
	assert.Equal(t, LabelSilence, LabelSilence.Collapse())
	// Everything else folds into other.
	assert.Equal(t, LabelOther, LabelBed.Collapse())
	assert.Equal(t, LabelOther, LabelVisual.Collapse())
	assert.Equal(t, LabelOther, LabelOther.Collapse())
}

func TestClassIndex(t *testing.T) {
	assert.Equal(t, 0, LabelYes.ClassIndex())
	assert.Equal(t, 19, LabelNine.ClassIndex())
	assert.Equal(t, 20, LabelSilence.ClassIndex())
	assert.Equal(t, 21, LabelMarvin.ClassIndex())

	// Every raw label lands inside the collapsed class space.
	for l := Label(0); l < NumLabels; l++ {
		idx := l.ClassIndex()
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, NumClasses)
	}
}
