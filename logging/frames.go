package logging

import "runtime"

// callerFrames resolves the call frame for pc, split out so the handler
// logic above stays readable.
func callerFrames(pc uintptr) *runtime.Frames {
	return runtime.CallersFrames([]uintptr{pc})
}
