// Package preview renders the resolved data ordering for inspection and
// generates a quick perfusion-weighted image without running the full
// analysis.
package preview

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/msageha/aslrun/internal/model"
	"github.com/msageha/aslrun/internal/order"
	"github.com/msageha/aslrun/internal/validate"
)

// Layout renders a volume-by-volume table of the ordering the analysis
// will assume for the accepted session. Reading it against a known
// acquisition protocol is the quickest way to catch a wrong grouping
// before hours of model fitting.
func Layout(acc *validate.Accepted) string {
	acq := &acc.Session.Acquisition
	labels := order.Expand(acc.Spec, acq.NTIs, acc.NRepeats, acq.TCPairs, acq.TagFirst)

	var b strings.Builder
	fmt.Fprintf(&b, "Data order: %s (%d TIs, %d repeats, TC pairs=%v)\n",
		acc.Spec, acq.NTIs, acc.NRepeats, acq.TCPairs)

	w := tabwriter.NewWriter(&b, 2, 0, 2, ' ', 0)
	fmt.Fprintln(w, "volume\tTI\tphase\t")
	for i, l := range labels {
		phase := l.Phase.String()
		if l.RepeatCopy {
			phase += " (repeat)"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t\n", i, l.TimingIndex, phase)
	}
	w.Flush()
	return b.String()
}

// Labels returns the expanded per-volume labels for the accepted session.
func Labels(acc *validate.Accepted) []model.VolumeLabel {
	acq := &acc.Session.Acquisition
	return order.Expand(acc.Spec, acq.NTIs, acc.NRepeats, acq.TCPairs, acq.TagFirst)
}
