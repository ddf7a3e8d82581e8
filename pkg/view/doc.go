// Package view provides a named registry of templ components backing the
// router's View routes and Context.Render.
package view
