// Package transform implements optimization passes over mir bodies
// and the pipeline that runs them.
package transform

import (
	"log"

	"github.com/mirkit/mirkit/mir"
)

// If true, log each pass decision. Very verbose.
const debugging = false

func debugf(f string, args ...any) {
	if debugging {
		log.Printf(f, args...)
	}
}

// A Pass rewrites a body in place and reports whether it changed
// anything. Passes may degrade statements to nops but never add or
// remove locals, blocks or terminators.
type Pass interface {
	Name() string
	Run(body *mir.Body) bool
}

// A Pipeline runs a sequence of passes over bodies, applying the
// boundary predicate that decides whether a body is optimized at all:
// bodies in constant-evaluation contexts are always left alone, as
// later stages may need to evaluate them exactly as written, and
// nothing runs below optimization level 2.
type Pipeline struct {
	OptLevel int
	Passes   []Pass
}

// Run applies the pipeline to body and reports whether body changed.
func (p *Pipeline) Run(body *mir.Body) bool {
	if body.Source.ConstContext() {
		debugf("skipping %s: constant-evaluation context (%s)", body.Name, body.Source)
		return false
	}
	if p.OptLevel <= 1 {
		debugf("skipping %s: optimization level %d", body.Name, p.OptLevel)
		return false
	}
	changed := false
	for _, pass := range p.Passes {
		debugf("running %s on %s", pass.Name(), body.Name)
		changed = pass.Run(body) || changed
	}
	return changed
}
