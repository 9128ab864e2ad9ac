// Package web holds the page templates and static assets, compiled into
// the homefin binary.
package web

import "embed"

var (
	//go:embed templates/*.html
	TemplatesFS embed.FS

	//go:embed static/*
	StaticFS embed.FS
)
