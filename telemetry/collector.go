package telemetry

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gopsnet "github.com/shirou/gopsutil/v3/net"
)

// Probes are the individual platform reads a Collector is built from.
type Probes struct {
	Host       func(ctx context.Context) (*host.InfoStat, error)
	CPUCount   func(ctx context.Context) (int, error)
	CPUInfo    func(ctx context.Context) ([]cpu.InfoStat, error)
	CPUPercent func(ctx context.Context) ([]float64, error)
	Memory     func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	DiskUsage  func(ctx context.Context, path string) (*disk.UsageStat, error)
	Partitions func(ctx context.Context) ([]disk.PartitionStat, error)
	Load       func(ctx context.Context) (*load.AvgStat, error)
	Network    func(ctx context.Context) ([]gopsnet.IOCountersStat, error)
	Sensors    func(ctx context.Context) ([]host.TemperatureStat, error)
}

func DefaultProbes() Probes {
	return Probes{
		Host: host.InfoWithContext,
		CPUCount: func(ctx context.Context) (int, error) {
			return cpu.CountsWithContext(ctx, true)
		},
		CPUInfo: cpu.InfoWithContext,
		CPUPercent: func(ctx context.Context) ([]float64, error) {
			return cpu.PercentWithContext(ctx, 200*time.Millisecond, false)
		},
		Memory:    mem.VirtualMemoryWithContext,
		DiskUsage: disk.UsageWithContext,
		Partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, false)
		},
		Load: load.AvgWithContext,
		Network: func(ctx context.Context) ([]gopsnet.IOCountersStat, error) {
			return gopsnet.IOCountersWithContext(ctx, true)
		},
		Sensors: host.SensorsTemperaturesWithContext,
	}
}

// Collector reads a SystemInfo from the running machine. Every probe is
// independent; one failing leaves its fields null and the rest intact.
type Collector struct {
	probes   Probes
	diskPath string
	logger   *slog.Logger
}

func NewCollector(diskPath string, probes Probes) *Collector {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Collector{
		probes:   probes,
		diskPath: diskPath,
		logger:   slog.Default().With(slog.String("component", "telemetry")),
	}
}

func (c *Collector) Sample(ctx context.Context) SystemInfo {
	var info SystemInfo

	if c.probes.Host != nil {
		if h, err := c.probes.Host(ctx); c.ok("host", err) {
			info.BootTime = &h.BootTime
			info.ProcTotal = &h.Procs
			info.Hostname = nonEmpty(h.Hostname)
			info.OSRelease = nonEmpty(h.KernelVersion)
			info.OSType = nonEmpty(osType(h.OS))
		}
	}
	if c.probes.CPUCount != nil {
		if n, err := c.probes.CPUCount(ctx); c.ok("cpu count", err) {
			num := uint32(n)
			info.CPUNum = &num
		}
	}
	if c.probes.CPUInfo != nil {
		if cpus, err := c.probes.CPUInfo(ctx); c.ok("cpu info", err) && len(cpus) > 0 {
			mhz := uint64(cpus[0].Mhz)
			info.CPUSpeed = &mhz
		}
	}
	if c.probes.CPUPercent != nil {
		if pct, err := c.probes.CPUPercent(ctx); c.ok("cpu percent", err) && len(pct) > 0 {
			info.CPUUsage = &pct[0]
		}
	}
	if c.probes.Memory != nil {
		if m, err := c.probes.Memory(ctx); c.ok("memory", err) {
			total, free := m.Total/1024, m.Available/1024
			info.MemoryTotal = &total
			info.MemoryFree = &free
		}
	}
	if c.probes.DiskUsage != nil {
		if d, err := c.probes.DiskUsage(ctx, c.diskPath); c.ok("disk usage", err) {
			total, free := d.Total/1024, d.Free/1024
			info.DiskTotal = &total
			info.DiskFree = &free
		}
	}
	if c.probes.Load != nil {
		if l, err := c.probes.Load(ctx); c.ok("load", err) {
			info.AvgLoad = &l.Load1
		}
	}

	info.Disks = c.disks(ctx)
	info.Networks = c.networks(ctx)
	info.Sensors = c.sensors(ctx)
	return info
}

func (c *Collector) disks(ctx context.Context) []DiskInfo {
	disks := []DiskInfo{}
	if c.probes.Partitions == nil || c.probes.DiskUsage == nil {
		return disks
	}
	parts, err := c.probes.Partitions(ctx)
	if !c.ok("partitions", err) {
		return disks
	}
	for _, p := range parts {
		usage, err := c.probes.DiskUsage(ctx, p.Mountpoint)
		if err != nil {
			// Removable media and permission-restricted mounts are routine.
			continue
		}
		disks = append(disks, DiskInfo{
			Device:      p.Device,
			Mountpoint:  p.Mountpoint,
			FSType:      p.Fstype,
			TotalBytes:  usage.Total,
			FreeBytes:   usage.Free,
			UsedPercent: usage.UsedPercent,
		})
	}
	return disks
}

func (c *Collector) networks(ctx context.Context) []NetworkInfo {
	networks := []NetworkInfo{}
	if c.probes.Network == nil {
		return networks
	}
	counters, err := c.probes.Network(ctx)
	if !c.ok("network", err) {
		return networks
	}
	for _, n := range counters {
		networks = append(networks, NetworkInfo{
			Name:        n.Name,
			BytesSent:   n.BytesSent,
			BytesRecv:   n.BytesRecv,
			PacketsSent: n.PacketsSent,
			PacketsRecv: n.PacketsRecv,
		})
	}
	return networks
}

func (c *Collector) sensors(ctx context.Context) []SensorInfo {
	sensors := []SensorInfo{}
	if c.probes.Sensors == nil {
		return sensors
	}
	// Partial readings come back alongside a warnings error.
	temps, err := c.probes.Sensors(ctx)
	if err != nil && len(temps) == 0 {
		c.ok("sensors", err)
		return sensors
	}
	for _, t := range temps {
		sensors = append(sensors, SensorInfo{Key: t.SensorKey, Temperature: t.Temperature})
	}
	return sensors
}

func (c *Collector) ok(probe string, err error) bool {
	if err != nil {
		c.logger.Debug("Probe failed", slog.String("probe", probe), slog.String("error", err.Error()))
		return false
	}
	return true
}

// osType matches the kernel name uname reports.
func osType(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows_NT"
	case "freebsd":
		return "FreeBSD"
	}
	if goos == "" {
		return ""
	}
	return strings.ToUpper(goos[:1]) + goos[1:]
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
