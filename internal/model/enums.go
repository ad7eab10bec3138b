package model

// Dimension identifies one of the three acquisition dimensions interleaved
// within the 4th dimension of the input scan.
type Dimension string

const (
	DimTiming  Dimension = "t" // TIs / PLDs
	DimRepeats Dimension = "r"
	DimPairs   Dimension = "p" // tag/control pairs
)

func (d Dimension) Valid() bool {
	switch d {
	case DimTiming, DimRepeats, DimPairs:
		return true
	}
	return false
}

// Labelling is the ASL labelling scheme.
type Labelling string

const (
	LabellingPASL Labelling = "pasl"
	LabellingCASL Labelling = "casl" // cASL / pcASL
)

func (l Labelling) Valid() bool {
	return l == LabellingPASL || l == LabellingCASL
}

// Readout is the acquisition readout type.
type Readout string

const (
	Readout3D Readout = "3d"
	Readout2D Readout = "2d" // 2D multi-slice (e.g. EPI)
)

func (r Readout) Valid() bool {
	return r == Readout3D || r == Readout2D
}

// TransformType selects how the registration transform is supplied.
type TransformType string

const (
	TransformMatrix  TransformType = "matrix"
	TransformWarp    TransformType = "warp"
	TransformFSLAnat TransformType = "fslanat" // derived from an fsl_anat directory
)

func (t TransformType) Valid() bool {
	switch t {
	case TransformMatrix, TransformWarp, TransformFSLAnat:
		return true
	}
	return false
}

// DistCorrMethod selects the distortion correction source.
type DistCorrMethod string

const (
	DistCorrFieldmap    DistCorrMethod = "fieldmap"
	DistCorrCalibration DistCorrMethod = "calibration"
)

func (m DistCorrMethod) Valid() bool {
	return m == DistCorrFieldmap || m == DistCorrCalibration
}

// M0Type is the calibration M0 acquisition mode.
type M0Type string

const (
	M0LongTR   M0Type = "longtr" // proton density, long TR
	M0SatRecov M0Type = "satrecov"
)

func (m M0Type) Valid() bool {
	return m == M0LongTR || m == M0SatRecov
}

// CalibMethod is the calibration method.
type CalibMethod string

const (
	CalibRefRegion CalibMethod = "refregion"
	CalibVoxelwise CalibMethod = "voxelwise"
)

func (m CalibMethod) Valid() bool {
	return m == CalibRefRegion || m == CalibVoxelwise
}

// RefTissue is the calibration reference tissue type.
type RefTissue string

const (
	TissueCSF  RefTissue = "csf"
	TissueWM   RefTissue = "wm"
	TissueGM   RefTissue = "gm"
	TissueNone RefTissue = "none"
)

func (t RefTissue) Valid() bool {
	switch t {
	case TissueCSF, TissueWM, TissueGM, TissueNone:
		return true
	}
	return false
}

// refTissuePreset holds the default T1 (s) and T2 (ms) for a reference tissue.
type refTissuePreset struct {
	T1 float64
	T2 float64
}

var refTissuePresets = map[RefTissue]refTissuePreset{
	TissueCSF: {T1: 4.3, T2: 750},
	TissueWM:  {T1: 1.0, T2: 50},
	TissueGM:  {T1: 1.3, T2: 100},
}

// Phase tags a volume as plain (undifferenced), tag or control.
type Phase int

const (
	PhasePlain Phase = iota
	PhaseTag
	PhaseControl
)

func (p Phase) String() string {
	switch p {
	case PhaseTag:
		return "tag"
	case PhaseControl:
		return "control"
	default:
		return "plain"
	}
}
