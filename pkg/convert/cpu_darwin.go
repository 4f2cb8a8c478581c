//go:build darwin

package convert

import (
	"runtime"
	"syscall"
)

// detectOptimalWorkers prefers the performance cores of Apple Silicon.
func detectOptimalWorkers() int {
	for _, name := range []string{"hw.perflevel0.physicalcpu", "hw.physicalcpu"} {
		if n := sysctlCount(name); n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

// sysctlCount reads a little-endian integer sysctl value.
func sysctlCount(name string) int {
	result, err := syscall.Sysctl(name)
	if err != nil || len(result) == 0 {
		return 0
	}
	count := int(result[0])
	if len(result) > 1 {
		count |= int(result[1]) << 8
	}
	return count
}
