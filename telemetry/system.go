package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcus-crane/mediabridge/models"
)

// SystemInfo is a point-in-time reading of the machine. Memory and disk
// totals are in kilobytes and cpuSpeed in MHz, which is what the host
// application has always been sent. Any field the platform cannot provide
// is null.
type SystemInfo struct {
	BootTime    *uint64  `json:"bootTime"`
	CPUNum      *uint32  `json:"cpuNum"`
	CPUSpeed    *uint64  `json:"cpuSpeed"`
	DiskTotal   *uint64  `json:"diskTotal"`
	DiskFree    *uint64  `json:"diskFree"`
	MemoryTotal *uint64  `json:"memoryTotal"`
	MemoryFree  *uint64  `json:"memoryFree"`
	Hostname    *string  `json:"hostname"`
	AvgLoad     *float64 `json:"avgLoad"`
	OSRelease   *string  `json:"osRelease"`
	OSType      *string  `json:"osType"`
	ProcTotal   *uint64  `json:"procTotal"`

	CPUUsage *float64      `json:"cpuUsage"`
	Disks    []DiskInfo    `json:"disks"`
	Networks []NetworkInfo `json:"networks"`
	Sensors  []SensorInfo  `json:"sensors"`
}

type DiskInfo struct {
	Device      string  `json:"device"`
	Mountpoint  string  `json:"mountpoint"`
	FSType      string  `json:"fsType"`
	TotalBytes  uint64  `json:"totalBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	UsedPercent float64 `json:"usedPercent"`
}

type NetworkInfo struct {
	Name        string `json:"name"`
	BytesSent   uint64 `json:"bytesSent"`
	BytesRecv   uint64 `json:"bytesRecv"`
	PacketsSent uint64 `json:"packetsSent"`
	PacketsRecv uint64 `json:"packetsRecv"`
}

type SensorInfo struct {
	Key         string  `json:"key"`
	Temperature float64 `json:"temperature"`
}

// Sample flattens a reading into its persisted form.
func (i SystemInfo) Sample(at time.Time) (models.SystemSample, error) {
	payload, err := json.Marshal(i)
	if err != nil {
		return models.SystemSample{}, fmt.Errorf("failed to marshal system info: %w", err)
	}
	return models.SystemSample{
		SampledAt:   at.Unix(),
		Hostname:    val(i.Hostname),
		CPUUsage:    val(i.CPUUsage),
		MemoryTotal: int64(val(i.MemoryTotal)),
		MemoryFree:  int64(val(i.MemoryFree)),
		DiskTotal:   int64(val(i.DiskTotal)),
		DiskFree:    int64(val(i.DiskFree)),
		AvgLoad:     val(i.AvgLoad),
		ProcTotal:   int64(val(i.ProcTotal)),
		Payload:     payload,
	}, nil
}

func val[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
