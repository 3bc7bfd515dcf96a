package ui

import "embed"

//go:embed layouts/*.tmpl pages/*.tmpl
var TemplatesFS embed.FS

//go:embed static/*
var StaticFS embed.FS
