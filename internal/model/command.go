package model

import "strings"

// CommandDescriptor is one external tool invocation: a program plus its
// ordered argument tokens. Descriptors are immutable once built; every
// configuration change discards and rebuilds the whole sequence.
type CommandDescriptor struct {
	Program string
	Args    []string
}

// String renders the invocation one token per space, quoting tokens that
// contain whitespace. This is a display form; execution passes Args
// directly so no shell escaping is involved.
func (c CommandDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString(c.Program)
	for _, a := range c.Args {
		sb.WriteByte(' ')
		if strings.ContainsAny(a, " \t") {
			sb.WriteByte('"')
			sb.WriteString(a)
			sb.WriteByte('"')
		} else {
			sb.WriteString(a)
		}
	}
	return sb.String()
}

// CommandSequence is the ordered plan of tool invocations for one
// validated session.
type CommandSequence []CommandDescriptor

// VolumeLabel describes which timing index and phase one volume of the 4D
// input belongs to. RepeatCopy marks the 2nd..Nth repeat of the same
// timing/phase combination; it is used for display, not dimension counting.
type VolumeLabel struct {
	TimingIndex int
	Phase       Phase
	RepeatCopy  bool
}
