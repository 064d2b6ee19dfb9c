package core

import "errors"

// Result is the uniform outcome of every gateway call: either Success with
// Data, or a failure carrying a message.
type Result[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Empty is the payload of operations that return nothing, such as delete.
type Empty struct{}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result[T]{Error: err.Error()}
}

// Unwrap converts the result back into Go's value, error convention.
func (r Result[T]) Unwrap() (T, error) {
	if !r.Success {
		return r.Data, errors.New(r.Error)
	}
	return r.Data, nil
}
