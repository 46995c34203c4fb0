package web

import "html/template"

type ViewData struct {
	Version   string
	SiteTitle string
	Title     string
	Address   string
	Note      template.HTML
}

type renderedNote struct {
	Title string
	HTML  template.HTML
}
