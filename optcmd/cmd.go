// Package optcmd implements the frontend of the MIR optimizer. It
// serves as the entry-point for the miropt command.
package optcmd

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"

	"github.com/mirkit/mirkit/config"
	"github.com/mirkit/mirkit/parse"
	"github.com/mirkit/mirkit/transform"
	"github.com/mirkit/mirkit/version"
)

// Command is the miropt command line tool: it reads textual MIR,
// runs the optimization pipeline over every body and prints the
// result.
type Command struct {
	name string

	flags struct {
		fs *flag.FlagSet

		confFile     string
		optLevel     int
		printVersion bool

		debugCpuprofile string
		debugMemprofile string
		debugVersion    bool
		debugRusage     bool
	}
}

func NewCommand(name string) *Command {
	cmd := &Command{name: name}
	cmd.initFlagSet(name)
	return cmd
}

func (cmd *Command) initFlagSet(name string) {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	cmd.flags.fs = flags

	flags.StringVar(&cmd.flags.confFile, "config", "", "Load configuration from `file`")
	flags.IntVar(&cmd.flags.optLevel, "O", -1, "Optimization `level`, overriding the configuration")
	flags.BoolVar(&cmd.flags.printVersion, "version", false, "Print version and exit")

	flags.StringVar(&cmd.flags.debugCpuprofile, "debug.cpuprofile", "", "Write CPU profile to `file`")
	flags.StringVar(&cmd.flags.debugMemprofile, "debug.memprofile", "", "Write memory profile to `file`")
	flags.BoolVar(&cmd.flags.debugVersion, "debug.version", false, "Print detailed version information about this program")
	flags.BoolVar(&cmd.flags.debugRusage, "debug.rusage", false, "Print peak memory usage on exit")
}

// ParseFlags parses command line flags, exiting the process on error.
func (cmd *Command) ParseFlags(args []string) {
	cmd.flags.fs.Parse(args)
}

// Run runs the command on the files given on the command line and
// exits the process with an appropriate status code.
func (cmd *Command) Run() {
	switch {
	case cmd.flags.debugVersion:
		version.Verbose()
		exit(0)
	case cmd.flags.printVersion:
		version.Print()
		exit(0)
	}

	if path := cmd.flags.debugCpuprofile; path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	cfg, err := cmd.loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		exit(1)
	}

	files := cmd.flags.fs.Args()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.mir ...\n", cmd.name)
		exit(2)
	}

	status := 0
	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
			continue
		}
		if err := Process(cfg, file, src, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			status = 1
		}
	}

	if path := cmd.flags.debugMemprofile; path != "" {
		f, err := os.Create(path)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
	if cmd.flags.debugRusage {
		printMaxRSS()
	}
	exit(status)
}

func (cmd *Command) loadConfig() (config.Config, error) {
	cfg := config.Default()
	if cmd.flags.confFile != "" {
		var err error
		cfg, err = config.Load(cmd.flags.confFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	if cmd.flags.optLevel >= 0 {
		cfg.OptLevel = cmd.flags.optLevel
	}
	return cfg, nil
}

// Process parses all bodies in src, runs the configured pipeline over
// each and prints the optimized bodies to w.
func Process(cfg config.Config, filename string, src []byte, w io.Writer) error {
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	bodies, err := parse.Parse(filename, src)
	if err != nil {
		return err
	}
	for i, body := range bodies {
		changed := pipeline.Run(body)
		if cfg.Debug {
			log.Printf("%s: %s: changed=%t", filename, body.Name, changed)
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, body.String()); err != nil {
			return err
		}
	}
	return nil
}

func newPipeline(cfg config.Config) (*transform.Pipeline, error) {
	p := &transform.Pipeline{OptLevel: cfg.OptLevel}
	for _, name := range cfg.Passes {
		pass, ok := passes[name]
		if !ok {
			return nil, fmt.Errorf("unknown pass %q", name)
		}
		p.Passes = append(p.Passes, pass)
	}
	return p, nil
}

var passes = map[string]transform.Pass{
	"copyprop": transform.CopyPropagation{},
	"nopelim":  transform.NopElimination{},
}

func exit(code int) {
	os.Exit(code)
}
