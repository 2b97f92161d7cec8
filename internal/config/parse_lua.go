package config

import "cuelang.org/go/cue"

// LuaSandbox holds the optional filter sandbox limits and presence flags.
type LuaSandbox struct {
	TimeoutMs           int
	InstructionLimit    int
	MemoryLimitBytes    int
	HasTimeoutMs        bool
	HasInstructionLimit bool
	HasMemoryLimitBytes bool
}

// parseLuaSandboxSection extracts optional lua sandbox settings.
func parseLuaSandboxSection(v cue.Value) LuaSandbox {
	var s LuaSandbox
	lv := v.LookupPath(cue.ParsePath("lua"))
	if !lv.Exists() {
		return s
	}
	tv := lv.LookupPath(cue.ParsePath("timeoutMs"))
	if tv.Exists() && tv.Kind() == cue.IntKind {
		if err := tv.Decode(&s.TimeoutMs); err == nil {
			s.HasTimeoutMs = true
		}
	}
	iv := lv.LookupPath(cue.ParsePath("instructionLimit"))
	if iv.Exists() && iv.Kind() == cue.IntKind {
		if err := iv.Decode(&s.InstructionLimit); err == nil {
			s.HasInstructionLimit = true
		}
	}
	mv := lv.LookupPath(cue.ParsePath("memoryLimitBytes"))
	if mv.Exists() && mv.Kind() == cue.IntKind {
		if err := mv.Decode(&s.MemoryLimitBytes); err == nil {
			s.HasMemoryLimitBytes = true
		}
	}
	return s
}
