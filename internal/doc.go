// Package internal contains the waypoint implementation: the pattern
// compiler, the ordered route table with group scoping, the middleware
// pipeline and alias registry, the session-backed CSRF guard, the
// dispatcher, and reverse URL generation. The root waypoint package
// re-exports the public surface as type aliases.
package internal
