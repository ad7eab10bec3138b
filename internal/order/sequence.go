package order

import "github.com/msageha/aslrun/internal/model"

// Expand produces the per-volume labels for a 4D scan with the given
// ordering: which timing index and phase each of the
// nTIs × nRepeats × (2 if tcPairs) volumes belongs to.
//
// The order string is processed from its innermost letter (rightmost)
// outwards, growing a sequence from a single seed element:
//
//	t — replicate every element once per timing point
//	p — replace every element with a [tag, control] pair (or
//	    [control, tag] when control comes first); a no-op without pairs
//	r — replace every element with nRepeats copies, all but the first
//	    marked as repeat duplicates
//
// This is the single source of truth for the interleaving the downstream
// binning tool assumes; previews and validation both consume it.
func Expand(spec string, nTIs, nRepeats int, tcPairs, tagFirst bool) []model.VolumeLabel {
	cells := []cell{{}}
	for i := len(spec) - 1; i >= 0; i-- {
		cells = grow(cells, spec[i], nTIs, nRepeats, tcPairs, tagFirst)
	}

	// The timing index advances every period elements, where period is
	// the distance between the first two seed-equivalent elements of the
	// generated sequence. It must be measured, not assumed: pair and
	// repeat expansion change local multiplicities.
	p := period(cells)
	labels := make([]model.VolumeLabel, len(cells))
	for i, c := range cells {
		labels[i] = model.VolumeLabel{
			TimingIndex: (i / p) % nTIs,
			Phase:       c.phase,
			RepeatCopy:  c.repeat,
		}
	}
	return labels
}

type cell struct {
	phase  model.Phase
	repeat bool
}

func grow(cur []cell, letter byte, nTIs, nRepeats int, tcPairs, tagFirst bool) []cell {
	var next []cell
	switch letter {
	case 't':
		next = make([]cell, 0, len(cur)*nTIs)
		for _, c := range cur {
			for k := 0; k < nTIs; k++ {
				next = append(next, c)
			}
		}
	case 'p':
		if !tcPairs {
			return cur
		}
		next = make([]cell, 0, len(cur)*2)
		for _, c := range cur {
			tag, ctl := c, c
			tag.phase = model.PhaseTag
			ctl.phase = model.PhaseControl
			if tagFirst {
				next = append(next, tag, ctl)
			} else {
				next = append(next, ctl, tag)
			}
		}
	case 'r':
		next = make([]cell, 0, len(cur)*nRepeats)
		for _, c := range cur {
			next = append(next, c)
			rep := c
			rep.repeat = true
			for k := 1; k < nRepeats; k++ {
				next = append(next, rep)
			}
		}
	default:
		return cur
	}
	return next
}

// period returns the index distance between the first two occurrences of a
// seed-equivalent element (tag or plain phase, not a repeat copy), or 1
// when the sequence contains fewer than two.
func period(cells []cell) int {
	first := -1
	for i, c := range cells {
		if c.repeat || c.phase == model.PhaseControl {
			continue
		}
		if first < 0 {
			first = i
			continue
		}
		return i - first
	}
	return 1
}
