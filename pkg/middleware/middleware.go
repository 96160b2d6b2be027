// Package middleware provides composable HTTP middleware: CORS, request logging, and panic recovery.
package middleware

import "net/http"

// Middleware wraps a handler with behavior that runs around it.
type Middleware = func(http.Handler) http.Handler

// Stack is an ordered list of middleware. The zero value is empty and ready to use.
type Stack []Middleware

// Use appends middleware to the stack.
func (s *Stack) Use(mw ...Middleware) {
	*s = append(*s, mw...)
}

// Then wraps h so that middleware added first runs outermost.
func (s Stack) Then(h http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		h = s[i](h)
	}
	return h
}
