package render

import (
	"golang.org/x/sys/cpu"
)

// Capabilities describe the drawer family to use.
type Capabilities struct {
	// Wide selects the unrolled column and batch writers.
	Wide bool

	// Name is the feature set that enabled Wide, for logging.
	Name string
}

// DetectCapabilities inspects the CPU. Wide drawers are used wherever the
// CPU has a vector unit the compiler can keep busy with unrolled loops.
func DetectCapabilities() Capabilities {
	switch {
	case cpu.X86.HasAVX2:
		return Capabilities{Wide: true, Name: "avx2"}
	case cpu.X86.HasSSE2:
		return Capabilities{Wide: true, Name: "sse2"}
	case cpu.ARM64.HasASIMD:
		return Capabilities{Wide: true, Name: "asimd"}
	}
	return Capabilities{Name: "scalar"}
}
