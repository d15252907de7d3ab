package rewrite

// customProcessor adapts user function to strategy signature.
func (rw *Rewriter) customProcessor(fn CustomFunc) processor {
	return func(rc *Context, url string) (string, error) {
		return fn(url, rc.Node, rc.From, rc.Dirname, rc.To, &rw.opts, rc.Result), nil
	}
}

func noChange(*Context, string) (string, error) {
	return "", nil
}
