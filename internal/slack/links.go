package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/theopenlane/policypeek/internal/types"
)

// maxListedLinks caps the links rendered in a single notification
const maxListedLinks = 10

// LinksTitle is the notification headline for count detected links
func LinksTitle(count int) string {
	return fmt.Sprintf("Found %d policy link(s) on this page", count)
}

// LinksMessage builds the notification sent when a page reports policy links
func LinksMessage(pageURL string, links []types.PolicyLink) Message {
	title := LinksTitle(len(links))

	var b strings.Builder

	for i, link := range links {
		if i == maxListedLinks {
			fmt.Fprintf(&b, "_and %d more_\n", len(links)-maxListedLinks)

			break
		}

		fmt.Fprintf(&b, "• <%s|%s>", link.URL, escape(link.Text))

		if link.Kind != "" {
			fmt.Fprintf(&b, " `%s`", link.Kind)
		}

		b.WriteString("\n")
	}

	blocks := []Block{
		{
			Type: "header",
			Text: &TextObject{Type: "plain_text", Text: title},
		},
	}

	if pageURL != "" {
		blocks = append(blocks, Block{
			Type:   "section",
			Fields: []TextObject{{Type: "mrkdwn", Text: "*Page:*\n" + pageURL}},
		})
	}

	if b.Len() > 0 {
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: b.String()},
		})
	}

	return Message{Text: title, Blocks: blocks}
}

// NotifyLinks sends the links notification for a page
func (c *Client) NotifyLinks(ctx context.Context, pageURL string, links []types.PolicyLink) error {
	return c.Send(ctx, LinksMessage(pageURL, links))
}

// escape applies the mrkdwn control character escaping Slack requires
func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
