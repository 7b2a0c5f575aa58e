// Package ice ("internal compiler error") formats and raises the fatal
// diagnostics for malformed input and internal invariant violations: the
// mid-end has no recovery path for either, so a pass panics with a *Bug
// naming the block, instruction, and expected invariant, and the driver is
// the only place that recovers it.
package ice

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// Bug is a fatal internal-invariant violation or malformed-input assertion.
// Code is a short stable tag (e.g. "E-SSA-001") so the same failure mode
// can be grepped across reports.
type Bug struct {
	Code      string
	Pass      string // which pass raised it, e.g. "dominance", "ssa"
	Block     string // block label, empty if not block-scoped
	InstIndex int    // instruction index within the block, -1 if n/a
	Message   string
	cause     error
}

func (b *Bug) Error() string {
	loc := b.Pass
	if b.Block != "" {
		loc += " block " + b.Block
		if b.InstIndex >= 0 {
			loc += fmt.Sprintf(" inst %d", b.InstIndex)
		}
	}
	msg := fmt.Sprintf("[%s] %s: %s", b.Code, loc, b.Message)
	if b.cause != nil {
		return msg + ": " + b.cause.Error()
	}
	return msg
}

func (b *Bug) Unwrap() error { return b.cause }

// Raise panics with a *Bug wrapped in a stack trace via pkg/errors, so a
// recover() at the driver boundary can print a cause chain around the
// primary message.
func Raise(code, pass string, blockLabel string, instIndex int, format string, args ...any) {
	b := &Bug{
		Code:      code,
		Pass:      pass,
		Block:     blockLabel,
		InstIndex: instIndex,
		Message:   fmt.Sprintf(format, args...),
	}
	panic(errors.WithStack(b))
}

// RaiseGlobal is Raise for a violation that isn't scoped to one block.
func RaiseGlobal(code, pass, format string, args ...any) {
	Raise(code, pass, "", -1, format, args...)
}

// Recover turns a recovered panic produced by Raise into an error, leaving
// any other panic value to propagate (an ICE panic is the only kind this
// mid-end ever raises deliberately; anything else is a genuine bug in the
// recovery path itself and should not be swallowed).
func Recover(rec any) error {
	if rec == nil {
		return nil
	}
	if err, ok := rec.(error); ok {
		var bug *Bug
		if errors.As(err, &bug) {
			return err
		}
	}
	panic(rec)
}

// Report renders err with terminal coloring for the CLI's failure path.
func Report(err error) string {
	var b *Bug
	if errors.As(err, &b) {
		return color.RedString("internal compiler error %s", b.Error())
	}
	return color.RedString("internal compiler error: %s", err.Error())
}
