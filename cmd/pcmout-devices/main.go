// ABOUTME: Lists output drivers, devices and capabilities
// ABOUTME: Opens each driver's default stream to report what it negotiated
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Resonate-Protocol/pcmout/internal/logging"
	"github.com/Resonate-Protocol/pcmout/internal/version"
	"github.com/Resonate-Protocol/pcmout/pkg/pcmout"
)

func main() {
	driver := flag.String("driver", "", "Only list this driver")
	logLevel := flag.String("loglevel", "warn", "Log level (none, error, warn, info, debug)")
	flag.Parse()

	if _, err := logging.ConfigureDefaultLogger(*logLevel, "", slog.HandlerOptions{}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(version.String())

	drivers := pcmout.SupportedDrivers()
	if *driver != "" {
		drivers = []string{*driver}
	}

	failed := false
	for _, name := range drivers {
		if err := describe(name, name == pcmout.DefaultDriver()); err != nil {
			fmt.Printf("\n%s: %v\n", name, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func describe(name string, isDefault bool) error {
	out, err := pcmout.New(pcmout.Config{Driver: name})
	if err != nil {
		return err
	}
	defer out.Close()

	marker := ""
	if isDefault {
		marker = " (default)"
	}
	fmt.Printf("\n%s%s\n", name, marker)

	devices, err := out.ListDevices()
	if err != nil {
		return err
	}
	for _, d := range devices {
		def := ""
		if d.Default {
			def = " *"
		}
		fmt.Printf("  %s%s\n", d.Name, def)
	}

	status := out.Status()
	fmt.Printf("  stream:      %s on %s, %dms\n", status.Format, status.Device, status.LatencyMs)
	fmt.Printf("  exclusive:   %v\n", out.SupportsExclusive())
	fmt.Printf("  blocking:    %v\n", out.SupportsBlocking())
	fmt.Printf("  channels:    %s\n", join(out.SupportedChannelCounts()))
	fmt.Printf("  frequencies: %s\n", join(out.SupportedFrequencies()))
	fmt.Printf("  latencies:   %s\n", join(out.SupportedLatencies()))
	return nil
}

func join(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
