//go:build !unix

package command

import "errors"

func (p *execProcess) Pause() error {
	return errors.ErrUnsupported
}

func (p *execProcess) Resume() error {
	return errors.ErrUnsupported
}
