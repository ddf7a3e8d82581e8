package internal

import (
	"fmt"
	"reflect"
	"sync"
)

// Route is a single method + path template + handler + middleware entry in
// the route table. Routes are created during registration and are
// immutable afterward, except for the two narrow mutators Name and Use.
type Route struct {
	method     string
	template   string
	pattern    *pattern
	handler    any
	middleware []any
	name       string

	resolveOnce sync.Once
	resolved    HandlerFunc
	resolveErr  error

	chainOnce sync.Once
	chain     HandlerFunc
	chainErr  error
}

// Name assigns a name to the route for reverse URL generation.
// Returns the route for chaining. Uniqueness is not enforced; lookup
// returns the first route registered under a name.
func (rt *Route) Name(name string) *Route {
	rt.name = name
	return rt
}

// Use appends middleware to the route. Entries may be alias strings or
// concrete Middleware values. Duplicates are permitted and will run once
// per occurrence.
func (rt *Route) Use(mw ...any) *Route {
	rt.middleware = append(rt.middleware, mw...)
	return rt
}

// Method returns the route's HTTP method, always upper-cased.
func (rt *Route) Method() string { return rt.method }

// Template returns the registered path template.
func (rt *Route) Template() string { return rt.template }

// RouteName returns the assigned name, or "" if the route is unnamed.
func (rt *Route) RouteName() string { return rt.name }

// Middleware returns the route's middleware entries in execution order:
// global, then group (outer to inner), then route-specific.
func (rt *Route) Middleware() []any { return rt.middleware }

// handlerFunc resolves the route's handler reference to a callable.
// Plain functions are used directly; a MethodHandler is resolved through
// reflection once and cached for the lifetime of the route.
func (rt *Route) handlerFunc() (HandlerFunc, error) {
	rt.resolveOnce.Do(func() {
		rt.resolved, rt.resolveErr = resolveHandler(rt.handler)
	})
	return rt.resolved, rt.resolveErr
}

func resolveHandler(h any) (HandlerFunc, error) {
	switch v := h.(type) {
	case HandlerFunc:
		return v, nil
	case func(Context) error:
		return v, nil
	case MethodHandler:
		return resolveMethodHandler(v)
	case *MethodHandler:
		return resolveMethodHandler(*v)
	case nil:
		return nil, &HandlerResolutionError{Detail: "handler is nil"}
	default:
		return nil, &HandlerResolutionError{Detail: fmt.Sprintf("unsupported handler type %T", h)}
	}
}

func resolveMethodHandler(mh MethodHandler) (HandlerFunc, error) {
	if mh.Receiver == nil {
		return nil, &HandlerResolutionError{Detail: "method handler has nil receiver"}
	}

	rv := reflect.ValueOf(mh.Receiver)
	m := rv.MethodByName(mh.Method)
	if !m.IsValid() {
		return nil, &HandlerResolutionError{
			Detail: fmt.Sprintf("type %T has no method %q", mh.Receiver, mh.Method),
		}
	}

	fn, ok := m.Interface().(func(Context) error)
	if !ok {
		return nil, &HandlerResolutionError{
			Detail: fmt.Sprintf("method %T.%s does not have signature func(Context) error", mh.Receiver, mh.Method),
		}
	}
	return fn, nil
}

// chainFor builds the route's full onion chain: resolved handler wrapped
// by resolved middleware, first entry outermost. The chain is built once
// and cached; both success and failure are sticky, since a middleware
// contract violation is a configuration error that no retry can fix.
func (rt *Route) chainFor(r *Router) (HandlerFunc, error) {
	rt.chainOnce.Do(func() {
		h, err := rt.handlerFunc()
		if err != nil {
			rt.chainErr = err
			return
		}
		mws, err := r.resolveMiddleware(rt.middleware)
		if err != nil {
			rt.chainErr = err
			return
		}
		rt.chain = buildChain(mws, h)
	})
	return rt.chain, rt.chainErr
}
