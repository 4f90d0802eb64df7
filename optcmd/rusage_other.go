//go:build !unix

package optcmd

import (
	"fmt"
	"os"
)

func printMaxRSS() {
	fmt.Fprintln(os.Stderr, "peak RSS not available on this platform")
}
