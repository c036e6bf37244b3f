// Command xisoextract lists or extracts the contents of an Xbox optical
// disc image (XISO/XDVDFS).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/ZaparooProject/go-xiso/xdvdfs"
)

const appVersion = "0.1.0"

var verbose bool

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		runList(os.Args[2:])
	case "extract":
		runExtract(os.Args[2:])
	case "-version", "--version":
		fmt.Printf("xisoextract version %s\n", appVersion)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <list|extract> [options] <image> [outdir]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Reads an Xbox optical disc image (XISO/XDVDFS), from a bare file,\n")
	fmt.Fprintf(os.Stderr, "a compressed file (.gz/.bz2/.xz/.br/.zst), a MAME CHD container,\n")
	fmt.Fprintf(os.Stderr, "or an image embedded in a .zip/.7z/.rar archive.\n\n")
	fmt.Fprintf(os.Stderr, "Examples:\n")
	fmt.Fprintf(os.Stderr, "  %s list game.iso\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s extract game.iso.gz ./out\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "  %s extract collection.zip/Disc1/game.iso ./out\n", os.Args[0])
}

func runList(args []string) {
	fs := newSessionFlagSet("list")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	session := openOrExit(fs, fs.Arg(0))
	defer func() { _ = session.Close() }()

	sink := xdvdfs.NewBoundedListSink(0)
	if err := session.List(context.Background(), sink); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, e := range sink.Entries() {
		if e.IsDirectory() {
			fmt.Printf("%s/\n", e.Path)
		} else {
			fmt.Printf("%s (%d bytes)\n", e.Path, e.Size)
		}
	}
}

func runExtract(args []string) {
	fs := newSessionFlagSet("extract")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if fs.NArg() < 2 {
		usage()
		os.Exit(1)
	}

	session := openOrExit(fs, fs.Arg(0))
	defer func() { _ = session.Close() }()

	outDir := fs.Arg(1)
	if verbose {
		fmt.Fprintf(os.Stderr, "extracting to %s\n", outDir)
	}
	if err := session.Extract(context.Background(), afero.NewOsFs(), outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
