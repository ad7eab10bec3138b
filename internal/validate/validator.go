// Package validate checks a candidate session against file-system and
// dimensional facts and against cross-field constraints. Checks run in a
// fixed order and stop at the first failure; the result is either an
// accepted session (with the derived repeat count and ordering flags) or a
// single diagnostic.
package validate

import (
	"os"

	"github.com/msageha/aslrun/internal/model"
	"github.com/msageha/aslrun/internal/order"
)

// ImageLoader reports the dimension sizes of an image file.
type ImageLoader interface {
	Shape(path string) ([]int, error)
}

// ExistsFunc is the file-existence oracle.
type ExistsFunc func(path string) bool

// OSExists checks existence on the local filesystem.
func OSExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Accepted is a session that passed validation, together with the values
// derived on the way.
type Accepted struct {
	Session  *model.Session
	NRepeats int
	Spec     string // canonical 3-letter order string
	Flags    order.Flags
}

// Validator runs the ordered configuration checks. Collaborators are
// injected so tests can run without a filesystem.
type Validator struct {
	Images ImageLoader
	Exists ExistsFunc
}

// New returns a Validator using the given image loader and the local
// filesystem for existence checks.
func New(images ImageLoader) *Validator {
	return &Validator{Images: images, Exists: OSExists}
}

// Check validates the session. The checks run in order and the first
// failure wins; auxiliary files of optional features are checked later,
// lazily, by the compiler via CheckExists.
func (v *Validator) Check(s *model.Session) (*Accepted, error) {
	acq := &s.Acquisition

	if !v.Exists(acq.Data) {
		return nil, Errorf("input data", "no such file or directory: %s", acq.Data)
	}

	shape, err := v.Images.Shape(acq.Data)
	if err != nil {
		return nil, Errorf("input data", "%v", err)
	}
	if len(shape) != 4 {
		return nil, Errorf("input data", "not a 4D image (%d dimensions)", len(shape))
	}
	nvols := shape[3]

	n := acq.NTIs
	if acq.TCPairs {
		n *= 2
	}
	if n <= 0 || nvols%n != 0 {
		return nil, Errorf("input data",
			"contains %d volumes - not consistent with %d TIs and TC pairs=%v",
			nvols, acq.NTIs, acq.TCPairs)
	}
	nRepeats := nvols / n

	// A hand-edited session file can leave these lists out of step with
	// the TI count; enforce it before any timing values are emitted.
	if len(acq.TIs) != acq.NTIs {
		return nil, Errorf("plds",
			"%d timing values given for %d TIs", len(acq.TIs), acq.NTIs)
	}
	if nb := len(acq.BolusDur); nb != 1 && nb != acq.NTIs {
		return nil, Errorf("bolus",
			"%d bolus durations given (want 1 or %d)", nb, acq.NTIs)
	}

	if s.Analysis.OutDir == "" {
		return nil, Errorf("output directory", "not specified")
	}

	spec := order.FromGrouping(acq.GroupOuter, acq.GroupInner, acq.TCPairs)
	flags, err := order.Resolve(spec, acq.TCPairs, acq.TagFirst)
	if err != nil {
		return nil, Errorf("data order", "%v", err)
	}

	if s.Calibration.Enabled && s.Calibration.M0Type == model.M0SatRecov {
		return nil, Errorf("calibration", "saturation recovery is not supported by oxford_asl")
	}

	return &Accepted{Session: s, NRepeats: nRepeats, Spec: spec, Flags: flags}, nil
}

// CheckExists verifies an auxiliary file referenced by an enabled feature.
// The compiler calls this at build time for each such path.
func (v *Validator) CheckExists(field, path string) error {
	if !v.Exists(path) {
		return Errorf(field, "no such file or directory: %s", path)
	}
	return nil
}
