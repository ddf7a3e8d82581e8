package internal

// resolveMiddleware maps a route's middleware entries to concrete
// Middleware values. Strings are looked up in the alias table; concrete
// values pass through. Anything else fails the contract with a
// MiddlewareError. The list is not deduplicated: an identifier appearing
// at two scopes runs once per occurrence.
func (r *Router) resolveMiddleware(entries []any) ([]Middleware, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	mws := make([]Middleware, 0, len(entries))
	for _, entry := range entries {
		switch v := entry.(type) {
		case Middleware:
			mws = append(mws, v)
		case func(HandlerFunc) HandlerFunc:
			mws = append(mws, Middleware(v))
		case string:
			mw, ok := r.aliases[v]
			if !ok {
				return nil, &MiddlewareError{Entry: v}
			}
			mws = append(mws, mw)
		default:
			return nil, &MiddlewareError{Entry: entry}
		}
	}
	return mws, nil
}

// buildChain folds the middleware list in reverse around the terminal
// handler, so the first entry becomes the outermost wrapper and controls
// whether inner layers execute at all.
func buildChain(mws []Middleware, terminal HandlerFunc) HandlerFunc {
	h := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
