package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns the worker count for a pool, derived from the CPUs the
// scheduler actually has (GOMAXPROCS, which tracks container limits).
//
// The multiplier adjusts for the workload:
//   - 1.0 for CPU-bound work
//   - 2.0 for I/O-bound work
//   - 1.5 for mixed work
//
// limit caps the result; pass 0 for no cap. The PROBE_WORKERS
// environment variable overrides the calculation entirely (the cap
// still applies).
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("PROBE_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)
	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns the worker count for CPU-bound work (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the worker count for I/O-bound work (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns the worker count for mixed work (1.5 per CPU).
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
