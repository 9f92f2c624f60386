package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/tcnksm/go-input"
)

// Plain asks line by line, for terminals where a full screen program
// is unwelcome (pipes, CI, dumb terminals). Closed input is an error,
// never an empty answer.
type Plain struct {
	in *eofReader
	ui *input.UI
	// masked reads secrets straight from the terminal; nil when input is
	// not a terminal, in which case secrets are read as plain lines.
	masked *input.UI
}

// eofReader remembers whether the underlying reader ran dry.
type eofReader struct {
	r   io.Reader
	eof bool
}

func (e *eofReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if errors.Is(err, io.EOF) {
		e.eof = true
	}
	return n, err
}

func NewPlain(in io.Reader, out io.Writer) *Plain {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	tracked := &eofReader{r: in}
	p := &Plain{
		in: tracked,
		ui: &input.UI{Reader: tracked, Writer: out},
	}
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		p.masked = &input.UI{Reader: f, Writer: out}
	}
	return p
}

// ask re-asks after an invalid answer for as long as input keeps coming.
func (p *Plain) ask(ctx context.Context, read func() (string, error)) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		answer, err := read()
		switch {
		case err == nil:
			return answer, nil
		case errors.Is(err, input.ErrInterrupted):
			return "", ErrCancelled
		case p.in.eof:
			return "", io.ErrUnexpectedEOF
		case errors.Is(err, input.ErrEmpty),
			errors.Is(err, input.ErrNotNumber),
			errors.Is(err, input.ErrOutOfRange):
			continue
		default:
			return "", err
		}
	}
}

func (p *Plain) Choice(ctx context.Context, message string, choices []string) (string, error) {
	return p.ask(ctx, func() (string, error) {
		return p.ui.Select(message, choices, &input.Options{Required: true})
	})
}

func (p *Plain) Text(ctx context.Context, message string) (string, error) {
	return p.ask(ctx, func() (string, error) {
		return p.ui.Ask(message, &input.Options{Required: true, HideOrder: true})
	})
}

func (p *Plain) Secret(ctx context.Context, message string) (string, error) {
	ui, opts := p.ui, &input.Options{Required: true, HideOrder: true}
	if p.masked != nil {
		ui, opts.Mask = p.masked, true
	}
	return p.ask(ctx, func() (string, error) {
		return ui.Ask(message, opts)
	})
}
