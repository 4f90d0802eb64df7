package parse

import (
	"strings"
	"testing"
)

// Sources in these tests are written in the exact form the printer
// produces, so that parse and print can be compared byte for byte.

var roundTripSources = []string{
	`fn kitchen_sink {
    let _0: return
    let _1: arg "x"
    let _2: arg
    let _3: temp
    let _4: temp

    bb0: {
        StorageLive(_3)
        _3 = Copy(_1)
        _4 = Add(Copy(_3), const -7)
        switchInt(Move(_4)) -> [0: bb1, 1: bb2, otherwise: bb3]
    }

    bb1: {
        _0 = const true
        goto -> bb4
    }

    bb2: {
        _0 = const "s"
        goto -> bb4
    }

    bb3: {
        unreachable
    }

    bb4: {
        nop
        StorageDead(_3)
        return
    }
}
`,
	`fn places {
    let _0: return
    let _1: arg
    let _2: temp
    let _3: temp

    bb0: {
        _2 = &(*_1).0
        _3 = Len((*_1))
        _0 = Copy((*_1)[_3].1)
        drop(_2) -> bb1
    }

    bb1: {
        _0 = call Move(_2)(Copy(_3), const 1) -> bb2
    }

    bb2: {
        return
    }
}
`,
	`const fn answer {
    let _0: return

    bb0: {
        _0 = const 42
        return
    }
}
`,
	`static table {
    let _0: return

    bb0: {
        _0 = Not(const false)
        return
    }
}
`,
	`promoted lifted {
    let _0: return

    bb0: {
        _0 = const "p"
        return
    }
}
`,
	`const origin {
    let _0: return
    let _1: temp

    bb0: {
        _1 = Neg(const 1)
        _0 = Move(_1)
        return
    }
}
`,
}

func TestRoundTrip(t *testing.T) {
	for _, src := range roundTripSources {
		bodies, err := Parse("<test>", []byte(src))
		if err != nil {
			t.Errorf("%v\non:\n%s", err, src)
			continue
		}
		if len(bodies) != 1 {
			t.Errorf("got %d bodies, want 1", len(bodies))
			continue
		}
		if got := bodies[0].String(); got != src {
			t.Errorf("round trip changed the body.\ngot:\n%s\nwant:\n%s", got, src)
		}
	}
}

func TestMultipleBodies(t *testing.T) {
	src := `fn first {
    let _0: return

    bb0: {
        return
    }
}
const fn second {
    let _0: return

    bb0: {
        return
    }
}
`
	bodies, err := Parse("<test>", []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 2 {
		t.Fatalf("got %d bodies, want 2", len(bodies))
	}
	if bodies[0].Name != "first" || bodies[1].Name != "second" {
		t.Errorf("got names %q, %q", bodies[0].Name, bodies[1].Name)
	}
	if !bodies[1].Source.ConstContext() {
		t.Error("second body should be a const context")
	}
}

func TestComments(t *testing.T) {
	commented := `// a whole-line comment
fn f { // trailing
    let _0: return
    // between declarations and blocks
    bb0: {
        return // after a terminator
    }
}
`
	plain := `fn f {
    let _0: return

    bb0: {
        return
    }
}
`
	got, err := Parse("<test>", []byte(commented))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].String() != plain {
		t.Errorf("comments changed the parse:\n%s", got[0])
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{
			"foo f {\n}\n",
			"expected fn, const, static or promoted, found foo",
		},
		{
			"fn f {\n    let _1: temp\n}\n",
			"expected declaration of _0, found _1",
		},
		{
			"fn f {\n    let _0: local\n}\n",
			"expected return, arg or temp, found local",
		},
		{
			"fn f {\n    let _0: return\n    bb0: {\n        _5 = const 1\n        return\n    }\n}\n",
			"undeclared local _5",
		},
		{
			"fn f {\n    let _0: return\n    bb0: {\n        _0 = const 1\n    }\n}\n",
			"block bb0 has no terminator",
		},
		{
			"fn f {\n    let _0: return\n    bb0: {\n        return\n        nop\n    }\n}\n",
			"statement after terminator",
		},
		{
			"fn f {\n    let _0: return\n    bb0: {\n        goto -> bb9\n    }\n}\n",
			"no block bb9",
		},
		{
			"fn f {\n    let _0: return\n    bb1: {\n        return\n    }\n}\n",
			"expected bb0, found bb1",
		},
		{
			"fn f {\n    let _0: return\n    bb0: {\n        frob\n    }\n}\n",
			"expected statement or terminator, found frob",
		},
		{
			"fn f {\n    let _0: return \"abc\n}\n",
			"unterminated string",
		},
		{
			"fn f $\n",
			"unexpected character '$'",
		},
		{
			"fn f {\n    let _0: return\n    bb0: {\n        _0 = const nope\n        return\n    }\n}\n",
			"expected literal, found nope",
		},
	}
	for _, tt := range tests {
		_, err := Parse("<test>", []byte(tt.src))
		if err == nil {
			t.Errorf("no error on:\n%s", tt.src)
			continue
		}
		if !strings.Contains(err.Error(), tt.want) {
			t.Errorf("got error %q, want %q\non:\n%s", err, tt.want, tt.src)
		}
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := Parse("test.mir", []byte("foo f {\n}\n"))
	if err == nil {
		t.Fatal("no error")
	}
	want := "test.mir:1:1: expected fn, const, static or promoted, found foo"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err, want)
	}
}

func FuzzParse(f *testing.F) {
	for _, src := range roundTripSources {
		f.Add(src)
	}
	f.Fuzz(func(t *testing.T, in string) {
		bodies, err := Parse("<fuzz>", []byte(in))
		if err != nil {
			return
		}
		// Whatever parses must print back into a form that parses to
		// the same thing.
		for _, body := range bodies {
			printed := body.String()
			again, err := Parse("<fuzz>", []byte(printed))
			if err != nil {
				t.Fatalf("printed form does not parse: %v\n%s", err, printed)
			}
			if len(again) != 1 || again[0].String() != printed {
				t.Fatalf("printed form is not stable:\n%s", printed)
			}
		}
	})
}
