package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Detail fetches the full record for a plugin, including its
// description rendered from marketplace HTML to plain text.
func (c *Client) Detail(ctx context.Context, pluginID int) (*PluginDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, DetailTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/api/plugins/%d", c.baseURL, pluginID)

	body, err := c.get(ctx, "plugin detail", endpoint)
	if err != nil {
		return nil, err
	}

	var wd wireDetail
	if err := json.Unmarshal(body, &wd); err != nil {
		return nil, fmt.Errorf("failed to parse plugin detail: %w", err)
	}

	plugin := wirePlugin{
		ID:           wd.ID,
		XMLID:        wd.XMLID,
		Name:         wd.Name,
		Organization: wd.Organization,
		Downloads:    wd.Downloads,
		Vendor:       wd.Vendor,
	}.normalize()

	tags := make([]string, 0, len(wd.Tags))
	for _, t := range wd.Tags {
		if t.Name != "" {
			tags = append(tags, t.Name)
		}
	}

	link := wd.Link
	if link != "" && !strings.HasPrefix(link, "http") {
		link = c.baseURL + link
	}

	return &PluginDetail{
		Plugin:      plugin,
		Description: htmlToText(wd.Description),
		Tags:        tags,
		Rating:      wd.Rating,
		Link:        link,
	}, nil
}

var wsRun = regexp.MustCompile(`\s+`)

// htmlToText renders marketplace description HTML as plain text.
// Block elements separate paragraphs, list items get a dash, script
// and style bodies are dropped, entities are decoded by the parser.
// Unparseable input falls back to the raw string.
func htmlToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return strings.TrimSpace(htmlContent)
	}

	var b strings.Builder

	// Walk the DOM tree
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			// Source-formatting whitespace collapses like a browser would
			b.WriteString(wsRun.ReplaceAllString(n.Data, " "))
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "br":
				b.WriteByte('\n')
			case "li":
				b.WriteString("\n- ")
			case "p", "div", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
				"table", "tr", "blockquote", "pre":
				b.WriteByte('\n')
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}

		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
				"table", "blockquote", "pre":
				b.WriteByte('\n')
			}
		}
	}

	walk(doc)

	return tidyText(b.String())
}

// tidyText trims each line and collapses blank-line runs so rendered
// descriptions keep at most one empty line between paragraphs.
func tidyText(s string) string {
	var out []string
	prevBlank := true
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !prevBlank {
				out = append(out, "")
			}
			prevBlank = true
			continue
		}
		out = append(out, line)
		prevBlank = false
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
