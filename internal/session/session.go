// Package session loads and writes session files: YAML documents carrying
// a schema header followed by the session configuration.
package session

import (
	"fmt"
	"os"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/msageha/aslrun/internal/model"
	"github.com/msageha/aslrun/internal/validate"
	"github.com/msageha/aslrun/internal/yaml"
)

// File is the on-disk document layout.
type File struct {
	SchemaVersion int    `yaml:"schema_version"`
	FileType      string `yaml:"file_type"`
	model.Session `yaml:",inline"`
}

// Load reads, defaults and normalizes a session file. Omitted fields take
// the defaults of the file's labelling scheme.
func Load(path string) (*model.Session, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := yaml.ValidateSchemaHeaderFromBytes(content, yaml.FileTypeSession); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	// The labelling scheme decides several defaults, so it is probed
	// first and the full document is then unmarshalled over a default
	// session built for that scheme.
	var probe struct {
		Acquisition struct {
			Labelling model.Labelling `yaml:"labelling"`
		} `yaml:"acquisition"`
	}
	if err := yamlv3.Unmarshal(content, &probe); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	labelling := probe.Acquisition.Labelling
	if labelling == "" {
		labelling = model.LabellingCASL
	}
	if !labelling.Valid() {
		return nil, validate.Errorf("labelling", "unknown labelling scheme %q", string(labelling))
	}

	f := File{Session: model.DefaultSession(labelling)}
	if err := yamlv3.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	s := f.Session
	if err := checkEnums(&s); err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

// Save writes the session atomically under the current schema header.
func Save(path string, s *model.Session) error {
	f := File{
		SchemaVersion: yaml.CurrentSchemaVersion,
		FileType:      yaml.FileTypeSession,
		Session:       *s,
	}
	return yaml.AtomicWrite(path, f)
}

// WriteTemplate writes a default session for the labelling scheme,
// refusing to overwrite an existing file.
func WriteTemplate(path string, labelling model.Labelling) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	s := model.DefaultSession(labelling)
	s.Normalize()
	return Save(path, &s)
}

var validPEDirs = map[string]bool{
	"x": true, "y": true, "z": true,
	"-x": true, "-y": true, "-z": true,
}

func checkEnums(s *model.Session) error {
	acq := &s.Acquisition
	if !acq.GroupOuter.Valid() {
		return validate.Errorf("group_outer", "unknown dimension %q", string(acq.GroupOuter))
	}
	if !acq.GroupInner.Valid() {
		return validate.Errorf("group_inner", "unknown dimension %q", string(acq.GroupInner))
	}
	if !acq.Readout.Valid() {
		return validate.Errorf("readout", "unknown readout %q", string(acq.Readout))
	}
	if !s.Analysis.TransformType.Valid() {
		return validate.Errorf("transform_type", "unknown transform type %q", string(s.Analysis.TransformType))
	}
	if !s.DistCorr.Method.Valid() {
		return validate.Errorf("distortion_correction.method", "unknown method %q", string(s.DistCorr.Method))
	}
	if s.DistCorr.Enabled && !validPEDirs[s.DistCorr.PEDir] {
		return validate.Errorf("pedir", "unknown phase-encode direction %q", s.DistCorr.PEDir)
	}
	if !s.Calibration.M0Type.Valid() {
		return validate.Errorf("m0_type", "unknown M0 type %q", string(s.Calibration.M0Type))
	}
	if !s.Calibration.Method.Valid() {
		return validate.Errorf("calibration.method", "unknown method %q", string(s.Calibration.Method))
	}
	if !s.Calibration.RefTissueType.Valid() {
		return validate.Errorf("ref_tissue_type", "unknown reference tissue %q", string(s.Calibration.RefTissueType))
	}
	return nil
}
