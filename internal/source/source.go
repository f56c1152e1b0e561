// Package source acquires the text to read.
package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/text/unicode/norm"
)

// String is a fixed text.
type String string

func (s String) Text(context.Context) (string, error) {
	return norm.NFC.String(string(s)), nil
}

// Clipboard reads the system clipboard, the terminal's stand-in for the
// current selection.
type Clipboard struct {
	read func() (string, error)
}

// NewClipboard returns a clipboard source.
func NewClipboard() Clipboard {
	return Clipboard{read: clipboard.ReadAll}
}

func (c Clipboard) Text(context.Context) (string, error) {
	if clipboard.Unsupported && c.read == nil {
		return "", fmt.Errorf("clipboard is not supported on this system")
	}
	read := c.read
	if read == nil {
		read = clipboard.ReadAll
	}
	s, err := read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return norm.NFC.String(s), nil
}

// Reader reads everything from R.
type Reader struct {
	R io.Reader
}

func (r Reader) Text(context.Context) (string, error) {
	b, err := io.ReadAll(r.R)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return norm.NFC.String(string(b)), nil
}

// File reads a file, or standard input when Path is "-".
type File struct {
	Path string
}

func (f File) Text(ctx context.Context) (string, error) {
	if f.Path == "-" {
		return Reader{R: os.Stdin}.Text(ctx)
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	return norm.NFC.String(string(b)), nil
}
