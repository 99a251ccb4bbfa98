// Package export renders a conversation as a standalone HTML document, used
// by the /h chat command to produce something shareable.
package export

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/darko-mesaros/bedrust/chat"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
header { border-bottom: 1px solid #ccc; margin-bottom: 1.5rem; }
.summary { color: #555; font-style: italic; }
.message { margin: 1rem 0; padding: 0.75rem 1rem; border-radius: 6px; white-space: pre-wrap; }
.user { background: #eef4ff; }
.assistant { background: #f4f4f4; }
.role { font-weight: bold; font-size: 0.85rem; text-transform: uppercase; color: #666; }
footer { margin-top: 2rem; font-size: 0.8rem; color: #999; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
{{if .Summary}}<p class="summary">{{.Summary}}</p>{{end}}
</header>
{{range .Messages}}<div class="message {{.Role}}">
<div class="role">{{.Role}}</div>
<div>{{.Text}}</div>
</div>
{{end}}<footer>Exported {{.Timestamp}}</footer>
</body>
</html>
`

var page = template.Must(template.New("conversation").Parse(pageTemplate))

type pageMessage struct {
	Role string
	Text string
}

type pageData struct {
	Title     string
	Summary   string
	Messages  []pageMessage
	Timestamp string
}

// Render writes the conversation as HTML to w.
func Render(w io.Writer, c *chat.Conversation) error {
	data := pageData{
		Title:     "Conversation",
		Timestamp: c.Timestamp,
	}
	if c.Title != nil && *c.Title != "" {
		data.Title = *c.Title
	}
	if c.Summary != nil {
		data.Summary = *c.Summary
	}
	for _, m := range c.Messages {
		data.Messages = append(data.Messages, pageMessage{
			Role: m.Role,
			Text: strings.Join(m.Content, "\n"),
		})
	}
	return page.Execute(w, data)
}

// WriteFile renders the conversation into dir, deriving the document name
// from the conversation's filename when it has one. It returns the path of
// the written file.
func WriteFile(dir string, c *chat.Conversation) (string, error) {
	name := "conversation.html"
	if fn := c.Filename(); fn != "" {
		name = strings.TrimSuffix(fn, filepath.Ext(fn)) + ".html"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()
	if err := Render(f, c); err != nil {
		return "", fmt.Errorf("rendering conversation: %w", err)
	}
	return path, nil
}
