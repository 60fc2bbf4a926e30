// Package supervisor runs the calculator, web and MCP binaries as child
// processes of one container entrypoint.
package supervisor

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os/exec"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	entrypoint "github.com/louisbranch/calcdeck/internal/platform/cmd"
)

// Config holds supervisor configuration.
type Config struct {
	BinDir          string        `env:"CALCDECK_BIN_DIR"          envDefault:"/app"`
	CalcPort        int           `env:"CALCDECK_CALC_PORT"        envDefault:"8095"`
	WebHTTPAddr     string        `env:"CALCDECK_WEB_HTTP_ADDR"    envDefault:"0.0.0.0:8096"`
	MCPHTTPAddr     string        `env:"CALCDECK_MCP_HTTP_ADDR"    envDefault:"0.0.0.0:8097"`
	ShutdownTimeout time.Duration `env:"CALCDECK_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.BinDir, "bin-dir", cfg.BinDir, "Directory holding the calc, web and mcp binaries")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Grace period before children are killed")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Child describes one managed command.
type Child struct {
	Name string
	Path string
	Args []string
}

// Children returns the commands to start, calculator first.
func Children(cfg Config) []Child {
	calcAddr := "127.0.0.1:" + strconv.Itoa(cfg.CalcPort)
	return []Child{
		{
			Name: "calc",
			Path: filepath.Join(cfg.BinDir, "calc"),
			Args: []string{"-port=" + strconv.Itoa(cfg.CalcPort)},
		},
		{
			Name: "web",
			Path: filepath.Join(cfg.BinDir, "web"),
			Args: []string{"-http-addr=" + cfg.WebHTTPAddr, "-calc-addr=" + calcAddr},
		},
		{
			Name: "mcp",
			Path: filepath.Join(cfg.BinDir, "mcp"),
			Args: []string{"-transport=http", "-http-addr=" + cfg.MCPHTTPAddr, "-calc-addr=" + calcAddr},
		},
	}
}

// childProcess is a started child.
type childProcess struct {
	name string
	cmd  *exec.Cmd
}

// processExit reports a child process exit result.
type processExit struct {
	name string
	err  error
}

// Run starts every child and supervises them until ctx ends or one exits.
// It returns the exit code the entrypoint should use.
func Run(ctx context.Context, cfg Config, stdout, stderr io.Writer) (int, error) {
	var children []*childProcess
	for _, def := range Children(cfg) {
		child, err := startChild(def, stdout, stderr)
		if err != nil {
			terminateChildren(children, nil)
			return 1, err
		}
		children = append(children, child)
	}

	exitCh := make(chan processExit, len(children))
	for _, child := range children {
		go waitChild(child, exitCh)
	}

	exited := make(map[string]bool, len(children))
	select {
	case <-ctx.Done():
		log.Printf("shutdown signal received")
		terminateChildren(children, exited)
		waitForChildren(exitCh, exited, cfg.ShutdownTimeout, children)
		return 0, nil
	case exit := <-exitCh:
		log.Printf("%s exited: %v", exit.name, exit.err)
		exited[exit.name] = true
		terminateChildren(children, exited)
		waitForChildren(exitCh, exited, cfg.ShutdownTimeout, children)
		return exitCode(exit.err), nil
	}
}

// startChild starts a child process with the supervisor's output streams.
func startChild(def Child, stdout, stderr io.Writer) (*childProcess, error) {
	cmd := exec.Command(def.Path, def.Args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", def.Name, err)
	}
	return &childProcess{name: def.Name, cmd: cmd}, nil
}

// waitChild waits for a child process and reports its exit.
func waitChild(child *childProcess, exitCh chan<- processExit) {
	err := child.cmd.Wait()
	exitCh <- processExit{name: child.name, err: err}
}

// terminateChildren sends SIGTERM to every child not yet reported as exited.
func terminateChildren(children []*childProcess, exited map[string]bool) {
	for _, child := range children {
		if child == nil || child.cmd == nil || child.cmd.Process == nil || exited[child.name] {
			continue
		}
		_ = child.cmd.Process.Signal(syscall.SIGTERM)
	}
}

// waitForChildren records exits until every child is in exited or the timeout
// passes, then kills whatever is left.
func waitForChildren(exitCh <-chan processExit, exited map[string]bool, timeout time.Duration, children []*childProcess) {
	if len(exited) >= len(children) {
		return
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for len(exited) < len(children) {
		select {
		case exit := <-exitCh:
			exited[exit.name] = true
		case <-timer.C:
			forceKill(children, exited)
			return
		}
	}
}

// forceKill sends SIGKILL to every child not yet reported as exited.
//
// Exits are known only through exitCh; cmd.ProcessState belongs to the
// goroutine blocked in cmd.Wait.
func forceKill(children []*childProcess, exited map[string]bool) {
	for _, child := range children {
		if child == nil || child.cmd == nil || child.cmd.Process == nil || exited[child.name] {
			continue
		}
		log.Printf("%s did not stop in time; killing", child.name)
		_ = child.cmd.Process.Kill()
	}
}

// exitCode derives a process exit code from a wait error.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
