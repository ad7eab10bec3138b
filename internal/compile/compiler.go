// Package compile turns an accepted session into the ordered sequence of
// external tool invocations that performs the analysis.
package compile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/msageha/aslrun/internal/model"
	"github.com/msageha/aslrun/internal/order"
	"github.com/msageha/aslrun/internal/validate"
)

// Canonical staged-structural paths inside the output directory.
const (
	structuralHead  = "structural_head"
	structuralBrain = "structural_brain"
)

// Compiler builds command sequences. It is pure and idempotent: compiling
// the same accepted configuration twice yields an identical sequence.
type Compiler struct {
	Validator *validate.Validator
}

func New(v *validate.Validator) *Compiler {
	return &Compiler{Validator: v}
}

// Compile validates the session and, on success, builds the plan. The
// argument groups of the main command keep a fixed relative order: some
// downstream tool versions resolve duplicate flags positionally, so the
// groups must never be reordered.
func (c *Compiler) Compile(s *model.Session) (model.CommandSequence, *validate.Accepted, error) {
	acc, err := c.Validator.Check(s)
	if err != nil {
		return nil, nil, err
	}
	seq, err := c.build(acc)
	if err != nil {
		return nil, nil, err
	}
	return seq, acc, nil
}

func (c *Compiler) build(acc *validate.Accepted) (model.CommandSequence, error) {
	s := acc.Session
	acq := &s.Acquisition
	an := &s.Analysis
	outdir := an.OutDir

	args := []string{"-i", acq.Data, "-o", outdir}
	args = append(args, acc.Flags.Tokens()...)
	args = append(args, "--tis", joinFixed2(s.EffectiveTIs()))
	args = append(args, "--bolus", joinFixed2(acq.BolusDur))

	if an.WhitePaper {
		args = append(args, "--wp")
	} else {
		args = append(args, "--t1", fixed2(an.T1), "--bat", fixed2(an.BAT))
	}
	args = append(args, "--t1b", fixed2(an.T1b), "--alpha", fixed2(an.Alpha))
	args = append(args,
		"--spatial="+boolFlag(an.Spatial),
		"--fixbolus="+boolFlag(an.FixBolus),
		"--mc="+boolFlag(an.MC))

	if an.InferT1 {
		args = append(args, "--infert1")
	}
	if an.PVCorr {
		args = append(args, "--pvcorr")
	}
	if !an.Macro {
		// Inverted polarity: the flag switches the macrovascular
		// component off, so it is emitted when the option is disabled.
		args = append(args, "--artoff")
	}
	if an.Mask != "" {
		if err := c.Validator.CheckExists("analysis mask", an.Mask); err != nil {
			return nil, err
		}
		args = append(args, "-m", an.Mask)
	}
	if acq.Labelling == model.LabellingCASL {
		args = append(args, "--casl")
	}

	if an.Transform {
		switch an.TransformType {
		case model.TransformMatrix:
			if err := c.Validator.CheckExists("transformation matrix", an.TransformFile); err != nil {
				return nil, err
			}
			args = append(args, "--asl2struc", an.TransformFile)
		case model.TransformWarp:
			if err := c.Validator.CheckExists("warp image", an.TransformFile); err != nil {
				return nil, err
			}
			args = append(args, "--regfrom", an.TransformFile)
		case model.TransformFSLAnat:
			// Supplied by the --fslanat flag below.
		}
	}

	// Structural reference. A raw structural image is staged into the
	// output directory first, with bet run on the staged copy when brain
	// extraction was requested.
	var staging model.CommandSequence
	switch {
	case an.UseFSLAnat():
		if err := c.Validator.CheckExists("fsl_anat directory", an.FSLAnatDir); err != nil {
			return nil, err
		}
		args = append(args, "--fslanat="+an.FSLAnatDir)
	case an.UseStructural():
		if err := c.Validator.CheckExists("structural image", an.StructuralImage); err != nil {
			return nil, err
		}
		head := filepath.Join(outdir, structuralHead)
		brain := filepath.Join(outdir, structuralBrain)
		staging = append(staging, model.CommandDescriptor{
			Program: "imcp", Args: []string{an.StructuralImage, head},
		})
		if an.RunBet {
			staging = append(staging, model.CommandDescriptor{
				Program: "bet", Args: []string{head, brain},
			})
		} else {
			if err := c.Validator.CheckExists("structural brain image", an.StructuralBrain); err != nil {
				return nil, err
			}
			staging = append(staging, model.CommandDescriptor{
				Program: "imcp", Args: []string{an.StructuralBrain, brain},
			})
		}
		args = append(args, "--s", head, "--sbrain", brain)
	}

	if acq.Readout == model.Readout2D {
		// 2D multi-slice readout: slice timing is configured in ms but
		// the tool takes seconds.
		args = append(args, "--slicedt", fixed5(acq.TimePerSliceMs/1000))
		if acq.Multiband {
			args = append(args, "--sliceband", strconv.Itoa(acq.SlicesPerBand))
		}
	}

	dc := &s.DistCorr
	if dc.Enabled {
		if dc.Method == model.DistCorrFieldmap {
			if err := c.Validator.CheckExists("fieldmap image", dc.Fieldmap); err != nil {
				return nil, err
			}
			args = append(args, "--fmap="+dc.Fieldmap)
			if err := c.Validator.CheckExists("fieldmap magnitude image", dc.FieldmapMag); err != nil {
				return nil, err
			}
			if dc.MagBrainExtracted {
				args = append(args, "--fmapmagbrain="+dc.FieldmapMag)
			} else {
				args = append(args, "--fmapmag="+dc.FieldmapMag)
			}
		} else if dc.CBlip {
			args = append(args, "--cblip")
		}
		args = append(args,
			fmt.Sprintf("--echospacing=%.5f", dc.EchoSpacing),
			"--pedir="+dc.PEDir)
	}

	cal := &s.Calibration
	if cal.Enabled {
		if err := c.Validator.CheckExists("calibration image", cal.Image); err != nil {
			return nil, err
		}
		args = append(args, "-c", cal.Image)
		// Saturation recovery was rejected during validation; long TR is
		// the only mode that reaches this point.
		args = append(args, "--tr", fixed2(cal.TR))
		args = append(args, "--cgain", fixed2(cal.Gain))
		if s.CalibMethodInUse() == model.CalibRefRegion {
			args = append(args, "--cmethod", "single")
			args = append(args, "--tissref", strings.ToLower(string(cal.RefTissueType)))
			args = append(args, "--te", fixed2(cal.TE))
			args = append(args, "--t1csf", fixed2(cal.RefT1))
			args = append(args, "--t2csf", fixed2(cal.RefT2))
			args = append(args, "--t2bl", fixed2(cal.BloodT2))
			if cal.RefTissueMask != "" {
				if err := c.Validator.CheckExists("calibration reference tissue mask", cal.RefTissueMask); err != nil {
					return nil, err
				}
				args = append(args, "--csf", cal.RefTissueMask)
			}
			if cal.CoilImage != "" {
				if err := c.Validator.CheckExists("coil sensitivity reference image", cal.CoilImage); err != nil {
					return nil, err
				}
				args = append(args, "--cref", cal.CoilImage)
			}
		} else {
			args = append(args, "--cmethod", "voxel")
		}
	}

	seq := staging
	seq = append(seq, model.CommandDescriptor{Program: "oxford_asl", Args: args})
	return seq, nil
}

// PreviewCommand builds the asl_file invocation that writes the mean
// perfusion-weighted image for an accepted session to meanPath.
func PreviewCommand(acc *validate.Accepted, meanPath string) model.CommandDescriptor {
	acq := &acc.Session.Acquisition
	args := []string{
		"--data=" + acq.Data,
		fmt.Sprintf("--ntis=%d", acq.NTIs),
		"--mean=" + meanPath,
	}
	args = append(args, acc.Flags.Tokens()...)
	if acq.TCPairs {
		args = append(args, order.DiffFlag)
	}
	return model.CommandDescriptor{Program: "asl_file", Args: args}
}

func fixed2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func fixed5(v float64) string { return strconv.FormatFloat(v, 'f', 5, 64) }

func joinFixed2(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fixed2(v)
	}
	return strings.Join(parts, ",")
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
