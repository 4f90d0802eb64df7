package transform

import (
	"testing"

	"github.com/mirkit/mirkit/parse"
)

func TestNopElimination(t *testing.T) {
	body := parse.MustParse(`
fn f {
    let _0: return
    let _1: temp

    bb0: {
        nop
        _1 = const 1
        nop
        nop
        _0 = Move(_1)
        nop
        return
    }

    bb1: {
        nop
        unreachable
    }
}
`)
	if !(NopElimination{}).Run(body) {
		t.Fatal("pass reported no change")
	}
	want := `fn f {
    let _0: return
    let _1: temp

    bb0: {
        _1 = const 1
        _0 = Move(_1)
        return
    }

    bb1: {
        unreachable
    }
}
`
	if got := body.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if (NopElimination{}).Run(body) {
		t.Error("pass reported a change on a nop-free body")
	}
}
