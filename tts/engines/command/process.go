package command

import (
	"context"
	"os/exec"
	"strings"
)

// Process is a running speech command.
type Process interface {
	Wait() error
	Kill() error
	Pause() error
	Resume() error
}

// Starter launches a speech command.
type Starter func(binary string, args []string, stdin string) (Process, error)

// Output runs a command to completion and returns its stdout.
type Output func(ctx context.Context, binary string, args ...string) ([]byte, error)

type execProcess struct {
	cmd *exec.Cmd
}

func startExec(binary string, args []string, stdin string) (Process, error) {
	cmd := exec.Command(binary, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) Kill() error {
	// A stopped process must be continued to receive the kill promptly.
	_ = p.Resume()
	return p.cmd.Process.Kill()
}

func runOutput(ctx context.Context, binary string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, binary, args...).Output()
}
