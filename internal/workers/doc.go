/*
Package workers sizes worker pools for the background jobs in this
application, chiefly the duration-probe pool that runs ffprobe over
newly scanned files.

runtime.NumCPU() reports the host CPU count even when a container
cgroup caps the process at fewer cores; GOMAXPROCS (auto-set from the
cgroup limit in Go 1.19+) is the honest figure, so the helpers here
derive worker counts from it:

	// I/O-heavy work such as spawning ffprobe and reading files
	n := workers.ForIO(16)

	// CPU-heavy work
	n := workers.ForCPU(8)

Operators can override the calculation with the PROBE_WORKERS
environment variable.
*/
package workers
