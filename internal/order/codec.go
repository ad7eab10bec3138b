// Package order maps the grouping of acquisition dimensions to the order
// strings and flags the downstream FSL tools understand, and expands an
// order string into per-volume labels.
package order

import (
	"fmt"
	"strings"

	"github.com/msageha/aslrun/internal/model"
)

// DiffFlag requests tag-control differencing. It is not part of the lookup
// table: callers append it themselves whenever tag/control pairs are
// enabled.
const DiffFlag = "--diff"

// flagTable maps a table key (order string, optionally suffixed ",tc" or
// ",ct") to the literal flag string asl_file and oxford_asl expect. The
// table is deliberately incomplete: two nesting arrangements have no
// supported encoding, so 10 of the 12 possible keys are present. Values
// are kept byte-for-byte as the downstream tools are regression-tested
// against this exact argument stream.
var flagTable = map[string]string{
	"trp":    "--ibf=tis --iaf=diff",
	"trp,tc": "--ibf=tis --iaf=tcb",
	"trp,ct": "--ibf=tis --iaf=ctb",
	"rtp":    "--ibf=rpt --iaf=diff",
	"rtp,tc": "--rpt --iaf=tcb",
	"rtp,ct": "--ibf=rpt --iaf=ctb",
	"ptr,tc": "--ibf=tis --iaf=tc",
	"ptr,ct": "--ibf=tis --iaf=ct",
	"prt,tc": "--ibf=rpt --iaf=tc",
	"prt,ct": "--ibf=rpt --iaf=ct",
}

// Flags is the resolved external flag set for one supported ordering.
type Flags struct {
	raw string
}

// Tokens returns the flag string split into argument tokens.
func (f Flags) Tokens() []string {
	return strings.Fields(f.raw)
}

func (f Flags) String() string {
	return f.raw
}

// UnsupportedError reports an ordering absent from the flag table.
type UnsupportedError struct {
	Key string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("data ordering %q is not supported", e.Key)
}

// TableKey builds the lookup key for an order string: when tag/control
// pairs are enabled the key carries a ",tc" (tag first) or ",ct" suffix.
func TableKey(spec string, tcPairs, tagFirst bool) string {
	if !tcPairs {
		return spec
	}
	if tagFirst {
		return spec + ",tc"
	}
	return spec + ",ct"
}

// Resolve looks up the external flags for an ordering. A miss is a
// validation failure for the caller, not a crash.
func Resolve(spec string, tcPairs, tagFirst bool) (Flags, error) {
	key := TableKey(spec, tcPairs, tagFirst)
	raw, ok := flagTable[key]
	if !ok {
		return Flags{}, &UnsupportedError{Key: key}
	}
	return Flags{raw: raw}, nil
}

// FromGrouping derives the canonical 3-letter order string from the user's
// outer/inner grouping choice. The third dimension is whatever remains.
// When tag/control pairs are disabled the pair dimension is not available,
// so a selection referencing it is clamped back to timing (and the inner
// choice moved off the outer one if they collide).
func FromGrouping(outer, inner model.Dimension, tcPairs bool) string {
	if !tcPairs {
		if outer == model.DimPairs {
			outer = model.DimTiming
		}
		if inner == model.DimPairs {
			inner = model.DimTiming
		}
	}
	if inner == outer {
		if outer == model.DimTiming {
			inner = model.DimRepeats
		} else {
			inner = model.DimTiming
		}
	}
	third := remaining(outer, inner)
	return string(outer) + string(inner) + string(third)
}

func remaining(a, b model.Dimension) model.Dimension {
	for _, d := range []model.Dimension{model.DimTiming, model.DimRepeats, model.DimPairs} {
		if d != a && d != b {
			return d
		}
	}
	return model.DimPairs
}
