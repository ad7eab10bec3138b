package preview

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msageha/aslrun/internal/model"
	"github.com/msageha/aslrun/internal/validate"
)

type fakeImages struct {
	shapes map[string][]int
}

func (f fakeImages) Shape(path string) ([]int, error) {
	if s, ok := f.shapes[path]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%s: not an image", path)
}

func acceptedSession(t *testing.T, nvols int, tcPairs bool) *validate.Accepted {
	t.Helper()
	s := model.DefaultSession(model.LabellingCASL)
	s.Acquisition.Data = "asl.nii.gz"
	s.Acquisition.NTIs = 2
	s.Acquisition.TIs = []float64{0.25, 0.5}
	s.Acquisition.TCPairs = tcPairs
	s.Analysis.OutDir = "out"

	v := &validate.Validator{
		Images: fakeImages{shapes: map[string][]int{"asl.nii.gz": {4, 4, 4, nvols}}},
		Exists: func(string) bool { return true },
	}
	acc, err := v.Check(&s)
	require.NoError(t, err)
	return acc
}

func TestLayout(t *testing.T) {
	acc := acceptedSession(t, 8, true) // 2 TIs x 2 phases x 2 repeats

	out := Layout(acc)
	assert.Contains(t, out, "Data order: ptr (2 TIs, 2 repeats, TC pairs=true)")
	assert.Contains(t, out, "tag")
	assert.Contains(t, out, "control")
	assert.Contains(t, out, "(repeat)")

	// One header line, one column line, one line per volume.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2+8)
}

func TestLayout_NoPairs(t *testing.T) {
	acc := acceptedSession(t, 6, false)

	out := Layout(acc)
	assert.Contains(t, out, "TC pairs=false")
	assert.Contains(t, out, "plain")
	assert.NotContains(t, out, "tag")
}

func TestLabels(t *testing.T) {
	acc := acceptedSession(t, 8, true)
	labels := Labels(acc)
	require.Len(t, labels, 8)
	assert.Equal(t, model.PhaseTag, labels[0].Phase)
	assert.Equal(t, model.PhaseControl, labels[1].Phase)
}
