// Command rrfsmount mounts an ISO 9660 / Rock Ridge image read-only at a
// mount point using FUSE, via jacobsa/fuse. It is the "kernel-filesystem
// bridge" spec.md §1 keeps external to the decoder core: this file and
// fs.go translate FUSE's inode/handle vocabulary onto rrfs.Image's
// path/record callback surface, and own nothing about ISO 9660 itself.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-rrfs/rrfs"
	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseutil"
)

func main() {
	if os.Getuid() == 0 || os.Geteuid() == 0 {
		fmt.Fprintln(os.Stderr, "rrfsmount: running as root opens unacceptable security holes")
		os.Exit(1)
	}

	readOnly := flag.Bool("ro", true, "mount read-only (always true; flag kept for command-line compatibility)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [options] <image-file> <mount-point>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	_ = readOnly

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	imagePath, mountPoint := flag.Arg(0), flag.Arg(1)

	data, err := os.ReadFile(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rrfsmount: reading %s: %v\n", imagePath, err)
		os.Exit(1)
	}

	img, err := rrfs.Open(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rrfsmount: opening %s: %v\n", imagePath, err)
		os.Exit(1)
	}

	server := fuseutil.NewFileSystemServer(newRrfsFileSystem(img))

	mfs, err := fuse.Mount(mountPoint, server, &fuse.MountConfig{
		FSName:      "rrfs",
		ReadOnly:    true,
		ErrorLogger: nil,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "rrfsmount: mounting %s at %s: %v\n", imagePath, mountPoint, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		_ = fuse.Unmount(mountPoint)
		cancel()
	}()

	if err := mfs.Join(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rrfsmount: %v\n", err)
		os.Exit(1)
	}
}
