package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/marcus-crane/mediabridge/telemetry"
)

var systemJSON bool

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Print a telemetry reading of this machine",
	RunE: func(cmd *cobra.Command, args []string) error {
		collector := telemetry.NewCollector(cfg.Telemetry.DiskPath, telemetry.DefaultProbes())
		info := collector.Sample(cmd.Context())
		if systemJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		return printSystemInfo(cmd.OutOrStdout(), info, time.Now())
	},
}

func init() {
	systemCmd.Flags().BoolVar(&systemJSON, "json", false, "print the reading as JSON")
	rootCmd.AddCommand(systemCmd)
}

func printSystemInfo(out io.Writer, info telemetry.SystemInfo, now time.Time) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Hostname\t%s\n", orUnknown(info.Hostname))
	fmt.Fprintf(w, "OS\t%s %s\n", orUnknown(info.OSType), orUnknown(info.OSRelease))
	if info.BootTime != nil {
		boot := time.Unix(int64(*info.BootTime), 0)
		fmt.Fprintf(w, "Booted\t%s\n", humanize.RelTime(boot, now, "ago", "from now"))
	}
	if info.CPUNum != nil {
		speed := "unknown speed"
		if info.CPUSpeed != nil {
			speed = fmt.Sprintf("%s MHz", humanize.Comma(int64(*info.CPUSpeed)))
		}
		fmt.Fprintf(w, "CPU\t%d cores @ %s\n", *info.CPUNum, speed)
	}
	if info.CPUUsage != nil {
		fmt.Fprintf(w, "CPU usage\t%.1f%%\n", *info.CPUUsage)
	}
	if info.AvgLoad != nil {
		fmt.Fprintf(w, "Load (1m)\t%.2f\n", *info.AvgLoad)
	}
	if info.MemoryTotal != nil && info.MemoryFree != nil {
		fmt.Fprintf(w, "Memory\t%s free of %s\n", kilobytes(*info.MemoryFree), kilobytes(*info.MemoryTotal))
	}
	if info.DiskTotal != nil && info.DiskFree != nil {
		fmt.Fprintf(w, "Disk\t%s free of %s\n", kilobytes(*info.DiskFree), kilobytes(*info.DiskTotal))
	}
	if info.ProcTotal != nil {
		fmt.Fprintf(w, "Processes\t%s\n", humanize.Comma(int64(*info.ProcTotal)))
	}
	for _, d := range info.Disks {
		fmt.Fprintf(w, "Mount %s\t%s free of %s (%s)\n", d.Mountpoint, humanize.IBytes(d.FreeBytes), humanize.IBytes(d.TotalBytes), d.FSType)
	}
	for _, n := range info.Networks {
		fmt.Fprintf(w, "Net %s\t%s sent, %s received\n", n.Name, humanize.IBytes(n.BytesSent), humanize.IBytes(n.BytesRecv))
	}
	for _, s := range info.Sensors {
		fmt.Fprintf(w, "Sensor %s\t%.1f°C\n", s.Key, s.Temperature)
	}
	return w.Flush()
}

func kilobytes(kb uint64) string {
	return humanize.IBytes(kb * 1024)
}

func orUnknown(s *string) string {
	if s == nil {
		return "unknown"
	}
	return *s
}
