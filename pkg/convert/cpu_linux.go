//go:build linux

package convert

import (
	"bufio"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// detectOptimalWorkers prefers performance cores on hybrid CPUs and falls
// back to all logical CPUs.
func detectOptimalWorkers() int {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return runtime.NumCPU()
	}
	defer f.Close()

	if n := perfCores(f); n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// perfCores counts physical cores clocked near the average frequency when
// cpuinfo shows a mix of fast and slow cores. It returns 0 for homogeneous
// CPUs or unreadable input.
func perfCores(r io.Reader) int {
	coreFreq := make(map[int]float64)
	coreID := -1

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "processor":
			coreID = -1
		case "core id":
			if id, err := strconv.Atoi(value); err == nil {
				coreID = id
			}
		case "cpu MHz":
			freq, err := strconv.ParseFloat(value, 64)
			if err != nil || coreID < 0 {
				continue
			}
			if freq > coreFreq[coreID] {
				coreFreq[coreID] = freq
			}
		}
	}

	if len(coreFreq) <= 2 {
		return 0
	}

	var sum float64
	for _, freq := range coreFreq {
		sum += freq
	}
	avg := sum / float64(len(coreFreq))

	perf := 0
	for _, freq := range coreFreq {
		if freq >= avg*0.9 {
			perf++
		}
	}
	if perf == len(coreFreq) {
		return 0
	}
	return perf
}
