package handlers

import (
	"html/template"
	"io/fs"
	"strings"

	"sufganiot/internal/models"
	"sufganiot/internal/utils"
	"sufganiot/web"

	"github.com/gin-contrib/multitemplate"
)

// LoadTemplates 每个页面 = layout + 页面自身（只定义 "content"），互不冲突
func LoadTemplates() (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layout, err := fs.ReadFile(web.Templates, web.LayoutFile)
	if err != nil {
		return nil, err
	}

	funcMap := template.FuncMap{
		"markdown": utils.RenderMarkdown,
		"categoryTitle": func(c models.Category) string {
			s := string(c)
			if s == "" {
				return s
			}
			return strings.ToUpper(s[:1]) + s[1:]
		},
	}

	for name, file := range web.Pages {
		page, err := fs.ReadFile(web.Templates, file)
		if err != nil {
			return nil, err
		}
		// layout 放最后解析，作为该模板名的主体
		r.AddFromStringsFuncs(name, funcMap, string(page), string(layout))
	}
	return r, nil
}
