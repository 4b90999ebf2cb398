// Command silk2mp3 converts SILK voice recordings to MP3.
//
// It takes one .silk file or a directory (walked recursively), decodes each
// file to mono PCM at the chosen sample rate, and encodes it with libmp3lame
// to a sibling .mp3. Existing outputs are skipped, so reruns only pick up
// new files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "0.1.0"
	commit  = "unknown"
)

// errReported marks an error that has already gone through the logger.
var errReported = errors.New("reported")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(stderr, "silk2mp3: %v\n", err)
		}
		return 1
	}
	return 0
}
