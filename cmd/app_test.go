package cmd

import (
	"io"
	"testing"
)

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	return nil
}

func TestAppCloseReleasesOnce(t *testing.T) {
	logs, db := &countingCloser{}, &countingCloser{}
	a := &app{closers: []io.Closer{logs, db}}
	current = a

	a.Close()
	a.Close()

	if logs.n != 1 || db.n != 1 {
		t.Errorf("closed log %d times, db %d times, want 1 each", logs.n, db.n)
	}
	if current != nil {
		t.Error("closed app is still the current app")
	}
}

func TestAppCloseLeavesOtherCurrent(t *testing.T) {
	other := &app{}
	current = other
	t.Cleanup(func() { current = nil })

	(&app{closers: []io.Closer{&countingCloser{}}}).Close()
	if current != other {
		t.Error("closing an unrelated app cleared the current app")
	}
}
