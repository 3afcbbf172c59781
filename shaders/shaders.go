// Package shaders embeds the WGSL sources for the splat viewer.
package shaders

import (
	_ "embed"
)

//go:embed splat.wgsl
var SplatWGSL string

//go:embed hud.wgsl
var HudWGSL string
