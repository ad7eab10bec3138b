// Package report records what a run executed, as a YAML document in the
// output directory.
package report

import (
	"path/filepath"
	"time"

	"github.com/msageha/aslrun/internal/fsl"
	"github.com/msageha/aslrun/internal/yaml"
)

// FileName is the report's name inside the output directory.
const FileName = "run_report.yaml"

// Only the end of each command's output is kept; full output was already
// streamed to the terminal.
const outputTailLimit = 4096

type Command struct {
	Program    string   `yaml:"program"`
	Args       []string `yaml:"args"`
	ExitCode   int      `yaml:"exit_code"`
	OutputTail string   `yaml:"output_tail,omitempty"`
	Error      string   `yaml:"error,omitempty"`
}

type Report struct {
	SchemaVersion int       `yaml:"schema_version"`
	FileType      string    `yaml:"file_type"`
	StartedAt     time.Time `yaml:"started_at"`
	FinishedAt    time.Time `yaml:"finished_at"`
	Succeeded     bool      `yaml:"succeeded"`
	Commands      []Command `yaml:"commands"`
}

// New builds a report from executor results.
func New(started, finished time.Time, results []fsl.Result, succeeded bool) Report {
	r := Report{
		SchemaVersion: yaml.CurrentSchemaVersion,
		FileType:      yaml.FileTypeRunReport,
		StartedAt:     started,
		FinishedAt:    finished,
		Succeeded:     succeeded,
	}
	for _, res := range results {
		c := Command{
			Program:    res.Descriptor.Program,
			Args:       res.Descriptor.Args,
			ExitCode:   res.ExitCode,
			OutputTail: tail(res.Output),
		}
		if res.Err != nil {
			c.Error = res.Err.Error()
		}
		r.Commands = append(r.Commands, c)
	}
	return r
}

// Write stores the report atomically in the output directory.
func Write(outDir string, r Report) error {
	return yaml.AtomicWrite(filepath.Join(outDir, FileName), r)
}

func tail(s string) string {
	if len(s) <= outputTailLimit {
		return s
	}
	return s[len(s)-outputTailLimit:]
}
