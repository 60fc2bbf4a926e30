package supervisor

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("supervisor", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.BinDir != "/app" || cfg.CalcPort != 8095 || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestChildrenWireCalcAddress(t *testing.T) {
	children := Children(Config{BinDir: "/opt/calcdeck", CalcPort: 9000, WebHTTPAddr: ":80", MCPHTTPAddr: ":81"})
	if len(children) != 3 {
		t.Fatalf("children = %d, want 3", len(children))
	}
	if children[0].Name != "calc" || children[0].Path != "/opt/calcdeck/calc" || children[0].Args[0] != "-port=9000" {
		t.Fatalf("calc child = %+v", children[0])
	}
	for _, child := range children[1:] {
		if !strings.Contains(strings.Join(child.Args, " "), "-calc-addr=127.0.0.1:9000") {
			t.Fatalf("%s args = %v, want calc address", child.Name, child.Args)
		}
	}
	if got := strings.Join(children[2].Args, " "); !strings.Contains(got, "-transport=http") || !strings.Contains(got, "-http-addr=:81") {
		t.Fatalf("mcp args = %v", children[2].Args)
	}
}

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRunStopsAllWhenOneExits(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	writeScript(t, dir, "calc", "exec sleep 30")
	writeScript(t, dir, "web", "exit 3")
	writeScript(t, dir, "mcp", "exec sleep 30")

	done := make(chan int, 1)
	go func() {
		code, err := Run(context.Background(), Config{BinDir: dir, CalcPort: 1, ShutdownTimeout: 2 * time.Second}, io.Discard, io.Discard)
		if err != nil {
			t.Errorf("run: %v", err)
		}
		done <- code
	}()

	select {
	case code := <-done:
		if code != 3 {
			t.Fatalf("exit code = %d, want 3", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	for _, name := range []string{"calc", "web", "mcp"} {
		writeScript(t, dir, name, "exec sleep 30")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		code, _ := Run(ctx, Config{BinDir: dir, ShutdownTimeout: 2 * time.Second}, io.Discard, io.Discard)
		done <- code
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case code := <-done:
		if code != 0 {
			t.Fatalf("exit code = %d, want 0", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not stop after cancel")
	}
}

func TestRunKillsChildrenIgnoringTerm(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	writeScript(t, dir, "calc", "exit 3")
	for _, name := range []string{"web", "mcp"} {
		writeScript(t, dir, name, "trap '' TERM\nwhile :; do sleep 1; done")
	}

	done := make(chan int, 1)
	go func() {
		code, err := Run(context.Background(), Config{BinDir: dir, CalcPort: 1, ShutdownTimeout: 200 * time.Millisecond}, io.Discard, io.Discard)
		if err != nil {
			t.Errorf("run: %v", err)
		}
		done <- code
	}()

	select {
	case code := <-done:
		if code != 3 {
			t.Fatalf("exit code = %d, want 3", code)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not kill stubborn children")
	}
}

func TestForceKillSkipsExitedChildren(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	start := func(name string) *childProcess {
		cmd := exec.Command("sleep", "30")
		if err := cmd.Start(); err != nil {
			t.Fatalf("start %s: %v", name, err)
		}
		t.Cleanup(func() {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		})
		return &childProcess{name: name, cmd: cmd}
	}
	reported := start("calc")
	running := start("web")

	forceKill([]*childProcess{reported, running}, map[string]bool{"calc": true})

	if err := running.cmd.Wait(); err == nil {
		t.Fatal("running child was not killed")
	}
	if err := reported.cmd.Process.Signal(syscall.Signal(0)); err != nil {
		t.Fatalf("reported child was signalled: %v", err)
	}
}

func TestWaitForChildrenRecordsExits(t *testing.T) {
	exitCh := make(chan processExit, 2)
	exitCh <- processExit{name: "web"}
	exitCh <- processExit{name: "mcp"}
	exited := map[string]bool{"calc": true}
	children := []*childProcess{{name: "calc"}, {name: "web"}, {name: "mcp"}}

	waitForChildren(exitCh, exited, time.Second, children)

	if len(exited) != 3 || !exited["web"] || !exited["mcp"] {
		t.Fatalf("exited = %v, want all three children", exited)
	}
}

func TestRunReportsMissingBinary(t *testing.T) {
	code, err := Run(context.Background(), Config{BinDir: t.TempDir()}, io.Discard, io.Discard)
	if err == nil || code != 1 || !strings.Contains(err.Error(), "start calc") {
		t.Fatalf("code = %d, err = %v", code, err)
	}
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Fatal("nil error should exit 0")
	}
	if exitCode(errors.New("boom")) != 1 {
		t.Fatal("plain error should exit 1")
	}
}
