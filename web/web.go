// Package web 内嵌看板/相册页面模板
package web

import "embed"

// LayoutFile 所有页面共用的外框，页面模板只定义 "content"
const LayoutFile = "templates/layout.html"

//go:embed templates/*.html
var Templates embed.FS

// Pages 页面名称 -> 模板文件
var Pages = map[string]string{
	"board.html":   "templates/board.html",
	"gallery.html": "templates/gallery.html",
	"pending.html": "templates/pending.html",
	"error.html":   "templates/error.html",
}
