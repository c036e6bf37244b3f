package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/ZaparooProject/go-xiso"
	"github.com/ZaparooProject/go-xiso/xdvdfs"
	"github.com/ZaparooProject/go-xiso/xdvdfs/nameenc"
)

// sessionFlags holds the flags shared by the list and extract subcommands.
type sessionFlags struct {
	base         string
	buffer       int
	cp1252       bool
	archiveEntry string
}

// flagData associates each constructed FlagSet with the sessionFlags it
// populated, since flag.FlagSet carries no user data slot of its own.
var flagData = map[*flag.FlagSet]*sessionFlags{}

func newSessionFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	sf := &sessionFlags{}
	fs.StringVar(&sf.base, "base", "", "force a candidate base offset (e.g. 0x2080000) instead of probing all three")
	fs.IntVar(&sf.buffer, "buffer", 0, "session read-buffer size in bytes (0 means use the default)")
	fs.BoolVar(&sf.cp1252, "cp1252", false, "decode entry names as Windows-1252 instead of lossy UTF-8")
	fs.StringVar(&sf.archiveEntry, "archive-entry", "", "select a specific entry when <image> is itself an archive")
	fs.BoolVar(&verbose, "verbose", false, "print progress to stderr")
	fs.SetOutput(os.Stderr)
	flagData[fs] = sf
	return fs
}

func openOrExit(fs *flag.FlagSet, image string) *xdvdfs.Session {
	sf := flagData[fs]

	var opts []xdvdfs.Option
	if sf.cp1252 {
		opts = append(opts, xdvdfs.WithNameEncoding(nameenc.CP1252))
	}
	if sf.buffer > 0 {
		opts = append(opts, xdvdfs.WithBufferSize(sf.buffer))
	}
	if sf.base != "" {
		base, err := strconv.ParseUint(sf.base, 0, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -base %q: %v\n", sf.base, err)
			os.Exit(2)
		}
		opts = append(opts, xdvdfs.WithForcedBaseOffset(base))
	}

	session, err := xiso.Open(context.Background(), image, sf.archiveEntry, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", image, err)
		os.Exit(1)
	}
	return session
}
