// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

//go:build linux

package metrics

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ioCollector reports process I/O counters from /proc/[pid]/io. The default
// process collector covers CPU, memory and FDs but not storage traffic.
type ioCollector struct {
	pid int

	readSyscallsDesc  *prometheus.Desc
	writeSyscallsDesc *prometheus.Desc
	readBytesDesc     *prometheus.Desc
	writeBytesDesc    *prometheus.Desc
}

func ioDesc(name, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "process", name),
		help, nil, nil,
	)
}

func newIOCollector() *ioCollector {
	return &ioCollector{
		pid:               os.Getpid(),
		readSyscallsDesc:  ioDesc("read_syscalls_total", "Total number of read syscalls (read, pread)."),
		writeSyscallsDesc: ioDesc("write_syscalls_total", "Total number of write syscalls (write, pwrite)."),
		readBytesDesc:     ioDesc("read_bytes_total", "Total number of bytes read from the storage layer."),
		writeBytesDesc:    ioDesc("write_bytes_total", "Total number of bytes written to the storage layer."),
	}
}

func (c *ioCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.readSyscallsDesc
	ch <- c.writeSyscallsDesc
	ch <- c.readBytesDesc
	ch <- c.writeBytesDesc
}

func (c *ioCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.readProcIO()
	if err != nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.readSyscallsDesc, prometheus.CounterValue, float64(stats["syscr"]))
	ch <- prometheus.MustNewConstMetric(c.writeSyscallsDesc, prometheus.CounterValue, float64(stats["syscw"]))
	ch <- prometheus.MustNewConstMetric(c.readBytesDesc, prometheus.CounterValue, float64(stats["read_bytes"]))
	ch <- prometheus.MustNewConstMetric(c.writeBytesDesc, prometheus.CounterValue, float64(stats["write_bytes"]))
}

// readProcIO parses /proc/[pid]/io, a file of "key: value" lines. See
// proc_pid_io(5) for the field meanings.
func (c *ioCollector) readProcIO() (map[string]int64, error) {
	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/io", c.pid))
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64)
	for _, line := range strings.Split(string(data), "\n") {
		key, rest, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			logger.Warn("unable to parse io value", "line", line, "err", err)
			continue
		}
		stats[key] = value
	}
	return stats, nil
}

var ioRegistered atomic.Bool

func registerIOCollector() {
	if ioRegistered.CompareAndSwap(false, true) {
		prometheus.MustRegister(newIOCollector())
	}
}
