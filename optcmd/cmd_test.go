package optcmd

import (
	"strings"
	"testing"

	"github.com/mirkit/mirkit/config"
)

func TestProcess(t *testing.T) {
	src := `fn a {
    let _0: return
    let _1: arg
    let _2: temp

    bb0: {
        StorageLive(_2)
        _2 = Copy(_1)
        StorageDead(_2)
        _0 = Neg(Copy(_2))
        return
    }
}
fn b {
    let _0: return

    bb0: {
        return
    }
}
`
	want := `fn a {
    let _0: return
    let _1: arg
    let _2: temp

    bb0: {
        _0 = Neg(Copy(_1))
        return
    }
}

fn b {
    let _0: return

    bb0: {
        return
    }
}
`
	var sb strings.Builder
	if err := Process(config.Default(), "a.mir", []byte(src), &sb); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestProcessLevelZero(t *testing.T) {
	src := `fn a {
    let _0: return
    let _1: arg
    let _2: temp

    bb0: {
        _2 = Copy(_1)
        _0 = Neg(Copy(_2))
        return
    }
}
`
	cfg := config.Default()
	cfg.OptLevel = 0
	var sb strings.Builder
	if err := Process(cfg, "a.mir", []byte(src), &sb); err != nil {
		t.Fatal(err)
	}
	if got := sb.String(); got != src {
		t.Errorf("level 0 changed the input:\n%s", got)
	}
}

func TestProcessUnknownPass(t *testing.T) {
	cfg := config.Default()
	cfg.Passes = []string{"bogus"}
	err := Process(cfg, "a.mir", nil, &strings.Builder{})
	if err == nil || !strings.Contains(err.Error(), `unknown pass "bogus"`) {
		t.Errorf("got %v", err)
	}
}

func TestProcessParseError(t *testing.T) {
	err := Process(config.Default(), "bad.mir", []byte("fn {"), &strings.Builder{})
	if err == nil || !strings.Contains(err.Error(), "bad.mir:") {
		t.Errorf("got %v", err)
	}
}

func TestOptLevelFlagOverridesConfig(t *testing.T) {
	cmd := NewCommand("miropt")
	cmd.ParseFlags([]string{"-O", "0"})
	cfg, err := cmd.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OptLevel != 0 {
		t.Errorf("OptLevel = %d, want 0", cfg.OptLevel)
	}

	cmd = NewCommand("miropt")
	cmd.ParseFlags(nil)
	cfg, err = cmd.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OptLevel != 2 {
		t.Errorf("OptLevel = %d, want the default 2", cfg.OptLevel)
	}
}
