package web

import "embed"

// StaticFS 首页静态文件
//
//go:embed index.html
var StaticFS embed.FS
