// miropt reads textual MIR, runs the optimization pipeline and
// prints the result.
package main

import (
	"os"

	"github.com/mirkit/mirkit/optcmd"
)

func main() {
	cmd := optcmd.NewCommand("miropt")
	cmd.ParseFlags(os.Args[1:])
	cmd.Run()
}
