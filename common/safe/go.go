package safe

import (
	"github.com/pkg/errors"
)

//be safe, don't panic

// Run calls fn and turns a panic into an error carrying the panic site's stack.
func Run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch x := r.(type) {
			case error:
				err = errors.WithStack(x)
			default:
				err = errors.Errorf("panic: %v", x)
			}
		}
	}()
	err = fn()
	return err
}

// Go runs fn in its own goroutine, the returned channel yields its result once.
func Go(fn func() error) <-chan error {
	c := make(chan error, 1)
	go func() {
		c <- Run(fn)
		close(c)
	}()
	return c
}
