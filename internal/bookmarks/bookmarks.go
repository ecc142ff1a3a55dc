// Package bookmarks renders a Netscape-format bookmark file linking every
// enabled web UI, one folder per category. The format is what browsers
// accept through their import dialog.
package bookmarks

import (
	"fmt"
	"html"
	"strings"

	"github.com/easiarr/easiarr/internal/config"
	"github.com/easiarr/easiarr/internal/registry"
)

const header = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
`

// Render produces the bookmark file for the enabled apps. Apps without a
// web UI are left out; categories with nothing to show are left out too.
func Render(settings config.Settings) []byte {
	byCategory := map[registry.Category][]registry.App{}
	for _, app := range settings.EnabledApps() {
		if !app.HasWebUI() {
			continue
		}
		byCategory[app.Category] = append(byCategory[app.Category], app)
	}

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("<DL><p>\n")
	sb.WriteString("    <DT><H3>easiarr</H3>\n")
	sb.WriteString("    <DL><p>\n")

	for _, cat := range registry.Categories() {
		apps := byCategory[cat]
		if len(apps) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "        <DT><H3>%s</H3>\n", html.EscapeString(cat.Title()))
		sb.WriteString("        <DL><p>\n")
		for _, app := range apps {
			fmt.Fprintf(&sb, "            <DT><A HREF=\"%s\">%s</A>\n",
				html.EscapeString(settings.URLFor(app)), html.EscapeString(app.Name))
		}
		sb.WriteString("        </DL><p>\n")
	}

	sb.WriteString("    </DL><p>\n")
	sb.WriteString("</DL><p>\n")
	return []byte(sb.String())
}
