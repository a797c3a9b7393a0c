package boot_test

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"j5.nz/gonert/boot"
	"j5.nz/gonert/rt"
)

// scenarioEnv selects a program for the re-executed test binary to start.
const scenarioEnv = "GONERT_BOOT_SCENARIO"

var counter int32

var scenarios = map[string]boot.Program{
	"print-int": {
		Init: func() {},
		Main: func() int32 {
			rt.PrintInt(42)
			return 0
		},
	},
	"print-bool": {
		Init: func() {},
		Main: func() int32 {
			rt.PrintBool(1)
			rt.PrintBool(0)
			return 0
		},
	},
	"print-float": {
		Init: func() {},
		Main: func() int32 {
			rt.PrintFloat(3.0)
			return 0
		},
	},
	"global-init": {
		Init: func() { counter = 7 },
		Main: func() int32 {
			rt.PrintInt(counter)
			return 0
		},
	},
	"no-init": {
		Main: func() int32 {
			rt.PrintInt(1)
			return 0
		},
	},
}

func TestMain(m *testing.M) {
	if name := os.Getenv(scenarioEnv); name != "" {
		startScenario(name)
	}
	os.Exit(m.Run())
}

func startScenario(name string) {
	if p, ok := scenarios[name]; ok {
		boot.Start(p)
	}
	code, err := strconv.ParseInt(name, 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", name)
		os.Exit(100)
	}
	boot.Start(boot.Program{
		Init: func() {},
		Main: func() int32 { return int32(code) },
	})
}

type result struct {
	stdout string
	stderr string
	status int
}

func runScenario(t *testing.T, name string) result {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(), scenarioEnv+"="+name)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	status := 0
	if err != nil {
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr), "run scenario %s: %v", name, err)
		status = exitErr.ExitCode()
	}
	return result{stdout: stdout.String(), stderr: stderr.String(), status: status}
}

func TestRunOrder(t *testing.T) {
	var calls []string
	p := boot.Program{
		Init: func() { calls = append(calls, boot.InitSymbol) },
		Main: func() int32 {
			calls = append(calls, boot.MainSymbol)
			return 0
		},
	}
	code, err := boot.Run(p)
	require.NoError(t, err)
	require.Equal(t, int32(0), code)
	require.Equal(t, []string{"__init", "_gone_main"}, calls)
}

func TestRunInitCompletesBeforeMain(t *testing.T) {
	initDone := false
	inits := 0
	p := boot.Program{
		Init: func() {
			inits++
			initDone = true
		},
		Main: func() int32 {
			if !initDone {
				return -1
			}
			return int32(inits)
		},
	}
	code, err := boot.Run(p)
	require.NoError(t, err)
	require.Equal(t, int32(1), code)
}

func TestRunPropagatesCode(t *testing.T) {
	for _, want := range []int32{0, 1, -1, 255, 256, 1000, math.MaxInt32, math.MinInt32} {
		code, err := boot.Run(boot.Program{
			Init: func() {},
			Main: func() int32 { return want },
		})
		require.NoError(t, err)
		require.Equal(t, want, code)
	}
}

func TestRunMissingSymbol(t *testing.T) {
	called := false
	_, err := boot.Run(boot.Program{Main: func() int32 {
		called = true
		return 0
	}})
	require.ErrorIs(t, err, boot.ErrUndefinedSymbol)
	require.ErrorContains(t, err, "__init")
	require.False(t, called)

	_, err = boot.Run(boot.Program{Init: func() { called = true }})
	require.ErrorIs(t, err, boot.ErrUndefinedSymbol)
	require.ErrorContains(t, err, "_gone_main")
	require.False(t, called)
}

func TestStartScenarios(t *testing.T) {
	cases := []struct {
		name   string
		stdout string
	}{
		{"print-int", "42\n"},
		{"print-bool", "true\nfalse\n"},
		{"print-float", "3.000000\n"},
		{"global-init", "7\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runScenario(t, tc.name)
			require.Equal(t, tc.stdout, res.stdout)
			require.Equal(t, 0, res.status)
		})
	}
}

func TestStartMissingInit(t *testing.T) {
	res := runScenario(t, "no-init")
	require.Empty(t, res.stdout)
	require.Equal(t, 2, res.status)
	require.Equal(t, "gonert: undefined symbol: __init\n", res.stderr)
}

func TestStartExitStatus(t *testing.T) {
	for _, code := range []int32{0, 3, 255, 256, 300, -1, math.MaxInt32} {
		t.Run(strconv.Itoa(int(code)), func(t *testing.T) {
			res := runScenario(t, strconv.Itoa(int(code)))
			require.Equal(t, boot.ExitStatus(code), res.status)
		})
	}
}
