//go:build unix

package command

import "golang.org/x/sys/unix"

func (p *execProcess) Pause() error {
	return unix.Kill(p.cmd.Process.Pid, unix.SIGSTOP)
}

func (p *execProcess) Resume() error {
	return unix.Kill(p.cmd.Process.Pid, unix.SIGCONT)
}
