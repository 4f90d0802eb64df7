//go:build unix

package optcmd

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

func printMaxRSS() {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		fmt.Fprintln(os.Stderr, "getrusage:", err)
		return
	}
	// ru_maxrss is in kilobytes on Linux and in bytes on Darwin.
	rss := ru.Maxrss
	if runtime.GOOS == "linux" {
		rss *= 1024
	}
	fmt.Fprintf(os.Stderr, "peak RSS: %d bytes\n", rss)
}
