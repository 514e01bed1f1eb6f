// Command rrfsinfo inspects an ISO 9660 / Rock Ridge image and prints its
// volume metadata. With -stats it also walks the whole tree, tallying
// file/directory counts and total size.
package main

import (
	"fmt"
	"os"

	"github.com/bgrewell/usage"
	"github.com/go-rrfs/rrfs"
	"github.com/go-rrfs/rrfs/pkg/logging"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("rrfsinfo"),
		usage.WithApplicationDescription("rrfsinfo inspects an ISO 9660 image with Rock Ridge extensions, printing volume metadata and, with -stats, a full-tree size/count summary."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	stats := u.AddBooleanOption("s", "stats", false, "Walk the full tree and report file/directory counts and total size", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Log volume/directory parsing to stderr as it happens", "optional", nil)
	path := u.AddArgument(1, "iso-path", "Path to the ISO image file", "")

	if !u.Parse() {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if path == nil || *path == "" {
		u.PrintError(fmt.Errorf("an ISO image path must be provided"))
		os.Exit(1)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		u.PrintError(fmt.Errorf("reading %s: %w", *path, err))
		os.Exit(1)
	}

	var openOpts []rrfs.Option
	if *verbose {
		useColor := term.IsTerminal(int(os.Stderr.Fd()))
		logger := logging.NewSimpleLogger(os.Stderr, logging.TRACE, useColor)
		openOpts = append(openOpts, rrfs.WithLogger(logger))
	}

	img, err := rrfs.Open(data, openOpts...)
	if err != nil {
		u.PrintError(fmt.Errorf("opening %s: %w", *path, err))
		os.Exit(1)
	}

	printVolumeInfo(img)

	if *stats {
		if err := printStats(img); err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
	}
}

func printVolumeInfo(img *rrfs.Image) {
	info := img.Info()

	fmt.Println("=== Volume Information ===")
	if info.VolumeIdentifier != "" {
		fmt.Printf("Volume Name: %s\n", info.VolumeIdentifier)
	}
	if info.SystemIdentifier != "" {
		fmt.Printf("System Identifier: %s\n", info.SystemIdentifier)
	}
	if info.ApplicationID != "" {
		fmt.Printf("Application: %s\n", info.ApplicationID)
	}
	if info.PublisherID != "" {
		fmt.Printf("Publisher: %s\n", info.PublisherID)
	}
	fmt.Printf("Volume Space Size: %d blocks\n", info.VolumeSpaceSize)
	fmt.Printf("Logical Block Size: %d bytes\n", info.LogicalBlockSize)
	if info.HasRockRidge {
		fmt.Println("Rock Ridge: enabled")
	} else {
		fmt.Println("Rock Ridge: not present")
	}
}

// printStats walks the whole tree, showing a spinner only when stdout is
// a real terminal — piping the output to a file or another process skips
// the spinner; the statistics block is printed either way.
func printStats(img *rrfs.Image) error {
	var spinner *yacspin.Spinner
	if term.IsTerminal(int(os.Stdout.Fd())) {
		cfg := yacspin.Config{
			Frequency:       100_000_000,
			CharSet:         yacspin.CharSets[9],
			Suffix:          " walking volume",
			SuffixAutoColon: true,
			StopMessage:     "done",
		}
		s, err := yacspin.New(cfg)
		if err == nil {
			spinner = s
			_ = spinner.Start()
		}
	}

	stats, err := img.Walk(img.RootRecord())

	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("walking volume: %w", err)
	}

	fmt.Println("=== Tree Statistics ===")
	fmt.Printf("Directories: %d\n", stats.Directories)
	fmt.Printf("Files: %d\n", stats.Files)
	fmt.Printf("Total Size: %d bytes\n", stats.TotalBytes)
	return nil
}
