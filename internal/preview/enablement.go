package preview

import "github.com/msageha/aslrun/internal/model"

// DeriveEnablement reports, for every conditional option, whether the
// current session state gives it any effect. Front ends use it to grey
// out dead controls; `check` prints it so a hand-edited file can be
// audited for options that look set but are ignored.
//
// Keys are the session file field paths.
func DeriveEnablement(s *model.Session) map[string]bool {
	acq := &s.Acquisition
	an := &s.Analysis
	dc := &s.DistCorr
	cal := &s.Calibration

	e := map[string]bool{
		"acquisition.tag_first":         acq.TCPairs,
		"acquisition.time_per_slice_ms": acq.Readout == model.Readout2D,
		"acquisition.multiband":         acq.Readout == model.Readout2D,
		"acquisition.slices_per_band":   acq.Readout == model.Readout2D && acq.Multiband,

		"analysis.bat": !an.WhitePaper,
		"analysis.t1":  !an.WhitePaper,

		"analysis.transform_type": an.Transform,
		"analysis.transform_file": an.Transform &&
			(an.TransformType == model.TransformMatrix || an.TransformType == model.TransformWarp),

		"analysis.structural_image": !an.UseFSLAnat(),
		"analysis.run_bet":          an.UseStructural(),
		"analysis.structural_brain": an.UseStructural() && !an.RunBet,
	}

	e["distortion_correction.method"] = dc.Enabled
	fieldmap := dc.Enabled && dc.Method == model.DistCorrFieldmap
	e["distortion_correction.fieldmap"] = fieldmap
	e["distortion_correction.fieldmap_mag"] = fieldmap
	e["distortion_correction.mag_brain_extracted"] = fieldmap
	e["distortion_correction.cblip"] = dc.Enabled &&
		dc.Method == model.DistCorrCalibration && cal.Enabled
	e["distortion_correction.echo_spacing"] = dc.Enabled
	e["distortion_correction.pedir"] = dc.Enabled

	e["calibration.m0_type"] = cal.Enabled
	e["calibration.image"] = cal.Enabled
	e["calibration.tr"] = cal.Enabled && cal.M0Type == model.M0LongTR
	e["calibration.gain"] = cal.Enabled
	// White-paper mode forces voxelwise calibration, disabling the choice.
	e["calibration.method"] = cal.Enabled && !an.WhitePaper
	refRegion := cal.Enabled && s.CalibMethodInUse() == model.CalibRefRegion
	e["calibration.ref_tissue_type"] = refRegion
	e["calibration.ref_tissue_mask"] = refRegion
	e["calibration.te"] = refRegion
	e["calibration.ref_t1"] = refRegion
	e["calibration.ref_t2"] = refRegion
	e["calibration.blood_t2"] = refRegion
	e["calibration.coil_image"] = refRegion

	return e
}
