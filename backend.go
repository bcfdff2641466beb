package wslapi

import (
	"context"

	"github.com/ubuntu/wslapi/internal/backend"
	"github.com/ubuntu/wslapi/internal/backend/windows"
)

type backendQueryType int

const backendQuery backendQueryType = 0

// WithMock adds a back-end to the context, to be used instead of wslapi.dll.
// It is meant to be used with the back-end from the mock package.
func WithMock(ctx context.Context, b backend.Backend) context.Context {
	return context.WithValue(ctx, backendQuery, b)
}

func selectBackend(ctx context.Context) backend.Backend {
	v := ctx.Value(backendQuery)

	if v == nil {
		return windows.New()
	}

	//nolint: forcetypeassert // The panic is expected and welcome
	return v.(backend.Backend)
}

type options struct {
	dll string
}

// Option is an optional argument for New.
type Option func(*options)

// WithDLL loads name instead of wslapi.dll. Bare names are only looked up in
// the system directory.
func WithDLL(name string) Option {
	return func(o *options) {
		o.dll = name
	}
}
