package pool

// Pool is a strongly typed wrapper around sync.Pool. It removes the
// interface{} casts from call sites and, when the pooled type implements
// Resettable, zeroes objects on Put() so the next Get() starts clean.
//
// The prompt formatter is the main customer: one strings.Builder per
// format call, recycled rather than reallocated.
//
// Example:
//   builders, err := NewLitePool(func() *strings.Builder {
//     return &strings.Builder{}
//   })
//   b := builders.Get()
//   ...
//   builders.Put(b)

import (
	"fmt"
	"reflect"
	"sync"
)

type Resettable interface {
	Reset()
}

type Pool[T any] struct {
	pool sync.Pool
}

func NewLitePool[T any](newFn func() T) (*Pool[T], error) {
	if newFn == nil {
		return nil, fmt.Errorf("litepool: constructor must not be nil")
	}
	if isNilValue(newFn()) {
		return nil, fmt.Errorf("litepool: constructor returned nil")
	}

	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return newFn()
			},
		},
	}, nil
}

// isNilValue catches typed nils too: a constructor returning a nil
// *strings.Builder produces a non-nil interface that still blows up on
// first use.
func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (p *Pool[T]) Get() T {
	//nolint:forcetypeassert // safe due to validated New
	return p.pool.Get().(T)
}

// Put returns v to the pool, resetting it first when supported. A
// *strings.Builder satisfies Resettable already.
func (p *Pool[T]) Put(v T) {
	if r, ok := any(v).(Resettable); ok {
		r.Reset()
	}
	p.pool.Put(v)
}
