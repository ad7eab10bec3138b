// Package model defines the session configuration and command data
// structures shared by the validator, compiler and executor.
package model

// Session is the complete configuration for one analysis. It is the single
// shared context passed to the validator and compiler; no component holds a
// reference to any other component.
type Session struct {
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	DistCorr    DistCorrConfig    `yaml:"distortion_correction"`
	Calibration CalibrationConfig `yaml:"calibration"`
}

// AcquisitionConfig describes the input scan and how its volumes are
// interleaved across timing points, repeats and tag/control pairs.
type AcquisitionConfig struct {
	Data string `yaml:"data"` // 4D input image

	NTIs int       `yaml:"ntis"` // number of TIs (pASL) or PLDs (cASL/pcASL)
	TIs  []float64 `yaml:"plds"` // one value per timing point, in seconds

	TCPairs  bool `yaml:"tc_pairs"`
	TagFirst bool `yaml:"tag_first"` // meaningful only when tc_pairs is set

	// Grouping of the acquisition dimensions within the 4th dimension of
	// the scan, outermost group first. The third dimension is whatever
	// remains.
	GroupOuter Dimension `yaml:"group_outer"`
	GroupInner Dimension `yaml:"group_inner"`

	Labelling Labelling `yaml:"labelling"`

	// Bolus durations in seconds: a single shared value or one per
	// timing point.
	BolusDur []float64 `yaml:"bolus"`

	Readout        Readout `yaml:"readout"`
	TimePerSliceMs float64 `yaml:"time_per_slice_ms"` // 2D readout only
	Multiband      bool    `yaml:"multiband"`
	SlicesPerBand  int     `yaml:"slices_per_band"`
}

// AnalysisConfig holds output, registration, structural reference and model
// fitting options.
type AnalysisConfig struct {
	OutDir string `yaml:"output_dir"`
	Mask   string `yaml:"mask,omitempty"` // brain mask, optional

	// White-paper mode (Alsop et al 2014): fixed T1/BAT pair and
	// voxelwise calibration.
	WhitePaper bool `yaml:"white_paper"`

	BAT   float64 `yaml:"bat"`   // bolus arrival time, seconds
	T1    float64 `yaml:"t1"`    // tissue T1, seconds
	T1b   float64 `yaml:"t1b"`   // blood T1, seconds
	Alpha float64 `yaml:"alpha"` // inversion efficiency

	Spatial  bool `yaml:"spatial"`   // adaptive spatial regularization
	InferT1  bool `yaml:"infer_t1"`  // incorporate T1 uncertainty
	Macro    bool `yaml:"macro"`     // include macrovascular component
	FixBolus bool `yaml:"fix_bolus"`
	PVCorr   bool `yaml:"pv_corr"`
	MC       bool `yaml:"mc"` // motion correction

	// Registration to structural/standard space.
	Transform     bool          `yaml:"transform"`
	TransformType TransformType `yaml:"transform_type"`
	TransformFile string        `yaml:"transform_file,omitempty"`

	// Structural reference: an fsl_anat output directory takes precedence
	// over a raw structural image. With a raw image, either bet is run on
	// the staged copy or a pre-extracted brain image is supplied.
	FSLAnatDir      string `yaml:"fsl_anat,omitempty"`
	StructuralImage string `yaml:"structural_image,omitempty"`
	RunBet          bool   `yaml:"run_bet"`
	StructuralBrain string `yaml:"structural_brain,omitempty"`
}

// DistCorrConfig holds distortion correction options.
type DistCorrConfig struct {
	Enabled bool           `yaml:"enabled"`
	Method  DistCorrMethod `yaml:"method"`

	Fieldmap          string `yaml:"fieldmap,omitempty"`     // in rad/s
	FieldmapMag       string `yaml:"fieldmap_mag,omitempty"`
	MagBrainExtracted bool   `yaml:"mag_brain_extracted"`

	CBlip bool `yaml:"cblip"` // phase-encode-reversed calibration image

	EchoSpacing float64 `yaml:"echo_spacing"` // effective EPI echo spacing, seconds
	PEDir       string  `yaml:"pedir"`        // x, y, z, -x, -y or -z
}

// CalibrationConfig holds calibration options.
type CalibrationConfig struct {
	Enabled bool   `yaml:"enabled"`
	M0Type  M0Type `yaml:"m0_type"`
	Image   string `yaml:"image,omitempty"`

	TR   float64 `yaml:"tr"`   // sequence TR, seconds (long TR mode)
	Gain float64 `yaml:"gain"`

	Method CalibMethod `yaml:"method"`

	// Reference region options.
	RefTissueType RefTissue `yaml:"ref_tissue_type"`
	RefTissueMask string    `yaml:"ref_tissue_mask,omitempty"`
	TE            float64   `yaml:"te"`       // sequence TE, ms
	RefT1         float64   `yaml:"ref_t1"`   // seconds
	RefT2         float64   `yaml:"ref_t2"`   // ms
	BloodT2       float64   `yaml:"blood_t2"` // ms
	CoilImage     string    `yaml:"coil_image,omitempty"` // coil sensitivity reference
}

// DefaultSession returns a session populated with the defaults for the
// given labelling scheme. Loading a session file unmarshals over this, so
// omitted fields keep their defaults.
func DefaultSession(labelling Labelling) Session {
	s := Session{
		Acquisition: AcquisitionConfig{
			NTIs:           1,
			TIs:            []float64{1.8},
			TCPairs:        true,
			TagFirst:       true,
			GroupOuter:     DimPairs,
			GroupInner:     DimTiming,
			Labelling:      labelling,
			Readout:        Readout3D,
			TimePerSliceMs: 10,
			SlicesPerBand:  5,
		},
		Analysis: AnalysisConfig{
			BAT:           1.3,
			T1:            1.3,
			T1b:           1.65,
			Alpha:         0.85,
			Spatial:       true,
			FixBolus:      true,
			TransformType: TransformFSLAnat,
		},
		DistCorr: DistCorrConfig{
			Method: DistCorrFieldmap,
			PEDir:  "x",
		},
		Calibration: CalibrationConfig{
			M0Type:        M0LongTR,
			TR:            6,
			Gain:          1,
			Method:        CalibRefRegion,
			RefTissueType: TissueCSF,
			BloodT2:       150,
		},
	}
	if labelling == LabellingPASL {
		s.Analysis.BAT = 0.7
		s.Analysis.Alpha = 0.98
		s.Acquisition.BolusDur = []float64{0.7}
	} else {
		s.Acquisition.BolusDur = []float64{1.8}
	}
	return s
}

// Normalize fills remaining derived defaults after unmarshalling: the
// reference-tissue T1/T2 presets and the white-paper parameter pair.
func (s *Session) Normalize() {
	if p, ok := refTissuePresets[s.Calibration.RefTissueType]; ok {
		if s.Calibration.RefT1 == 0 {
			s.Calibration.RefT1 = p.T1
		}
		if s.Calibration.RefT2 == 0 {
			s.Calibration.RefT2 = p.T2
		}
	}
	if s.Analysis.WhitePaper {
		// Fixed white-paper values; neither is emitted to oxford_asl but
		// they are shown by enablement-aware front ends.
		s.Analysis.T1 = 1.65
		s.Analysis.BAT = 0
	}
}

// UseFSLAnat reports whether an fsl_anat directory supplies the structural
// reference.
func (a *AnalysisConfig) UseFSLAnat() bool {
	return a.FSLAnatDir != ""
}

// UseStructural reports whether a raw structural image must be staged.
func (a *AnalysisConfig) UseStructural() bool {
	return !a.UseFSLAnat() && a.StructuralImage != ""
}

// CalibMethodInUse returns the effective calibration method: white-paper
// mode forces voxelwise.
func (s *Session) CalibMethodInUse() CalibMethod {
	if s.Analysis.WhitePaper {
		return CalibVoxelwise
	}
	return s.Calibration.Method
}

// EffectiveTIs returns the timing values emitted to oxford_asl. For
// cASL/pcASL the acquisition records PLDs and the tool expects
// TI = PLD + bolus duration; pASL timings pass through unchanged.
func (s *Session) EffectiveTIs() []float64 {
	tis := make([]float64, len(s.Acquisition.TIs))
	copy(tis, s.Acquisition.TIs)
	if s.Acquisition.Labelling != LabellingCASL {
		return tis
	}
	bolus := s.Acquisition.BolusDur
	for i := range tis {
		switch {
		case len(bolus) == 1:
			tis[i] += bolus[0]
		case i < len(bolus):
			tis[i] += bolus[i]
		}
	}
	return tis
}
