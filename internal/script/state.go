package script

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; the mutex serializes Go callers.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool
}

// NewState creates a sandboxed Lua state.
func NewState() *State {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	installSandbox(L)
	return &State{L: L}
}

// LoadFile creates a state and runs the file at path in it.
func LoadFile(ctx context.Context, path string) (*State, error) {
	s := NewState()
	if err := s.run(ctx, func() error { return s.L.DoFile(path) }); err != nil {
		s.Close()
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return s, nil
}

// DoString executes code in the state.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error { return s.L.DoString(code) })
}

// CallNumber calls the global function fn with string arguments and returns
// its single numeric result.
func (s *State) CallNumber(ctx context.Context, fn string, args ...string) (float64, error) {
	var result lua.LValue
	err := s.run(ctx, func() error {
		f := s.L.GetGlobal(fn)
		if f.Type() != lua.LTFunction {
			return fmt.Errorf("%w: %q (got %s)", ErrFunctionNotFound, fn, f.Type())
		}

		largs := make([]lua.LValue, len(args))
		for i, a := range args {
			largs[i] = lua.LString(a)
		}
		if err := s.L.CallByParam(lua.P{Fn: f, NRet: 1, Protect: true}, largs...); err != nil {
			return err
		}
		result = s.L.Get(-1)
		s.L.Pop(1)
		return nil
	})
	if err != nil {
		return 0, err
	}

	n, ok := result.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("%w: %s returned %s, want number", ErrBadResult, fn, result.Type())
	}
	return float64(n), nil
}

// Close releases the state. Safe to call more than once.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
}

// run executes fn under the state lock with ctx installed and panics recovered.
func (s *State) run(ctx context.Context, fn func() error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if ctx != nil {
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
