package viewgen

import (
	"strings"
	"text/template"

	"github.com/go-openapi/inflect"
)

// Funcs returns the helpers available to view templates.
//
//	{{ .Model.Name | plural | kebab }}   -> blog-posts
//	{{ .Model.Name | camel }}            -> blogPost
//	{{ .Name | label }}                  -> Published At
func Funcs() template.FuncMap {
	return template.FuncMap{
		"lower":     strings.ToLower,
		"upper":     strings.ToUpper,
		"title":     inflect.Capitalize,
		"plural":    inflect.Pluralize,
		"singular":  inflect.Singularize,
		"camel":     inflect.CamelizeDownFirst,
		"pascal":    inflect.Camelize,
		"snake":     inflect.Underscore,
		"kebab":     inflect.Dasherize,
		"humanize":  inflect.Humanize,
		"label":     Label,
		"join":      strings.Join,
		"hasPrefix": strings.HasPrefix,
		"contains":  strings.Contains,
	}
}
