package runcmd

import (
	"context"
	"io"
	"os/exec"
)

// Command describes one subprocess invocation: the pipeline scripts are
// opaque executables and only their exit status is interpreted.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// CommandRunner executes a Command, streaming its combined stdout/stderr
// into output. Implementations block until the subprocess exits.
type CommandRunner interface {
	Run(ctx context.Context, c Command, output io.Writer) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Command, output io.Writer) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdout = output
	cmd.Stderr = output
	return cmd.Run()
}
