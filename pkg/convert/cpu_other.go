//go:build !darwin && !linux

package convert

import "runtime"

// detectOptimalWorkers falls back to all logical CPUs.
func detectOptimalWorkers() int {
	return runtime.NumCPU()
}
