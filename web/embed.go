// Package web embeds the page templates and static assets.
package web

import "embed"

// TemplatesFS holds the layout and one template per page.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
