// Package feed synthesizes the podcast RSS document and its companion
// health artifact.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/lysyi3m/relaycast/app/catalog"
	"github.com/lysyi3m/relaycast/app/cfg"
)

const (
	itunesNamespace  = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	contentNamespace = "http://purl.org/rss/1.0/modules/content/"
	podcastNamespace = "https://podcastindex.org/namespace/1.0"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders the reconciled catalog into an RSS 2.0 document with itunes,
// content, and podcastindex namespace extensions. All free text passes
// through XML escaping exactly once; optional elements with empty values
// are not emitted.
func (g *Generator) Run(metadata catalog.PodcastMetadata, episodes []catalog.Episode, relayURLs []string) string {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf(`<rss version="2.0" xmlns:itunes="%s" xmlns:content="%s" xmlns:podcast="%s">`,
		itunesNamespace, contentNamespace, podcastNamespace))
	buf.WriteString("\n  <channel>\n")

	link := metadata.Link
	if link == "" {
		link = g.baseURL()
	}

	g.writeElement(&buf, "title", metadata.Title, 4)
	g.writeElement(&buf, "description", metadata.Description, 4)
	g.writeElement(&buf, "link", link, 4)
	g.writeElement(&buf, "language", metadata.Language, 4)
	g.writeElement(&buf, "copyright", metadata.Copyright, 4)
	if metadata.Email != "" {
		editor := fmt.Sprintf("%s (%s)", metadata.Email, metadata.Author)
		g.writeElement(&buf, "managingEditor", editor, 4)
		g.writeElement(&buf, "webMaster", editor, 4)
	}

	now := time.Now().In(time.Local)
	pubDate := now
	if len(episodes) > 0 {
		pubDate = episodes[0].PublishedAt
	}
	g.writeElement(&buf, "pubDate", pubDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "lastBuildDate", now.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("relaycast/%s", cfg.Get().Version), 4)
	g.writeElement(&buf, "ttl", "60", 4)

	g.writeElement(&buf, "itunes:title", metadata.Title, 4)
	g.writeElement(&buf, "itunes:summary", metadata.Description, 4)
	g.writeElement(&buf, "itunes:author", metadata.Author, 4)
	if metadata.Author != "" || metadata.Email != "" {
		buf.WriteString("    <itunes:owner>\n")
		g.writeElement(&buf, "itunes:name", metadata.Author, 6)
		g.writeElement(&buf, "itunes:email", metadata.Email, 6)
		buf.WriteString("    </itunes:owner>\n")
	}
	if metadata.ImageURL != "" {
		buf.WriteString(fmt.Sprintf("    <itunes:image href=\"%s\" />\n", html.EscapeString(metadata.ImageURL)))
	}
	for _, category := range metadata.Categories {
		if category != "" {
			buf.WriteString(fmt.Sprintf("    <itunes:category text=\"%s\" />\n", html.EscapeString(category)))
		}
	}
	g.writeElement(&buf, "itunes:explicit", strconv.FormatBool(metadata.Explicit), 4)
	g.writeElement(&buf, "itunes:type", metadata.Type, 4)

	g.writeElement(&buf, "podcast:guid", metadata.GUID, 4)
	g.writeElement(&buf, "podcast:medium", metadata.Medium, 4)
	if metadata.Locked {
		g.writeElement(&buf, "podcast:locked", "yes", 4)
	}
	g.writeElement(&buf, "podcast:publisher", metadata.Publisher, 4)
	g.writeElement(&buf, "podcast:license", metadata.License, 4)
	g.writeElement(&buf, "podcast:location", metadata.Location, 4)
	for _, person := range metadata.Persons {
		g.writePerson(&buf, person)
	}
	if metadata.Funding != "" {
		buf.WriteString(fmt.Sprintf("    <podcast:funding url=\"%s\">", html.EscapeString(metadata.Funding)))
		xml.EscapeText(&buf, []byte("Support "+metadata.Title))
		buf.WriteString("</podcast:funding>\n")
	}
	g.writeValueBlock(&buf, metadata)

	for _, episode := range episodes {
		g.writeItem(&buf, episode, relayURLs)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String()
}

// writeValueBlock emits the monetization split. When no recipients are
// configured, a funding URL becomes a single 100% fallback recipient.
func (g *Generator) writeValueBlock(buf *bytes.Buffer, metadata catalog.PodcastMetadata) {
	if metadata.Value.Amount <= 0 {
		return
	}

	recipients := metadata.Value.Recipients
	if len(recipients) == 0 {
		if metadata.Funding == "" {
			return
		}
		recipients = []catalog.ValueRecipient{{
			Name:    metadata.Author,
			Type:    "lnurl",
			Address: metadata.Funding,
			Split:   100,
		}}
	}

	buf.WriteString(fmt.Sprintf("    <podcast:value type=\"lightning\" method=\"keysend\" suggested=\"%s\">\n",
		strconv.FormatFloat(metadata.Value.Amount, 'f', -1, 64)))
	for _, r := range recipients {
		buf.WriteString(fmt.Sprintf("      <podcast:valueRecipient name=\"%s\" type=\"%s\" address=\"%s\" split=\"%d\"",
			html.EscapeString(r.Name), html.EscapeString(r.Type), html.EscapeString(r.Address), r.Split))
		if r.CustomKey != "" {
			buf.WriteString(fmt.Sprintf(" customKey=\"%s\" customValue=\"%s\"",
				html.EscapeString(r.CustomKey), html.EscapeString(r.CustomValue)))
		}
		if r.Fee {
			buf.WriteString(` fee="true"`)
		}
		buf.WriteString(" />\n")
	}
	buf.WriteString("    </podcast:value>\n")
}

func (g *Generator) writePerson(buf *bytes.Buffer, person catalog.Person) {
	if person.Name == "" {
		return
	}
	buf.WriteString("    <podcast:person")
	if person.Role != "" {
		buf.WriteString(fmt.Sprintf(" role=\"%s\"", html.EscapeString(person.Role)))
	}
	if person.Img != "" {
		buf.WriteString(fmt.Sprintf(" img=\"%s\"", html.EscapeString(person.Img)))
	}
	if person.Href != "" {
		buf.WriteString(fmt.Sprintf(" href=\"%s\"", html.EscapeString(person.Href)))
	}
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(person.Name))
	buf.WriteString("</podcast:person>\n")
}

func (g *Generator) writeItem(buf *bytes.Buffer, episode catalog.Episode, relayURLs []string) {
	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", episode.Title, 6)
	g.writeElement(buf, "description", episode.Description, 6)
	g.writeElement(buf, "link", g.episodeLink(episode, relayURLs), 6)
	g.writeElement(buf, "pubDate", episode.PublishedAt.Format(time.RFC1123Z), 6)

	buf.WriteString(`      <guid isPermaLink="false">`)
	xml.EscapeText(buf, []byte(episode.EventID))
	buf.WriteString("</guid>\n")

	if episode.AudioURL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"%d\" type=\"%s\" />\n",
			html.EscapeString(episode.AudioURL), episode.Size, html.EscapeString(episode.AudioType)))
	}

	for _, topic := range episode.Topics {
		if topic != "" {
			g.writeElement(buf, "category", topic, 6)
		}
	}

	if episode.Content != "" && episode.Content != episode.Description {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(episode.Content)
		buf.WriteString("]]></content:encoded>\n")
	}

	if episode.Duration > 0 {
		g.writeElement(buf, "itunes:duration", formatDuration(episode.Duration), 6)
	}
	if episode.Number > 0 {
		g.writeElement(buf, "itunes:episode", strconv.Itoa(episode.Number), 6)
	}
	if episode.Season > 0 {
		g.writeElement(buf, "itunes:season", strconv.Itoa(episode.Season), 6)
	}
	g.writeElement(buf, "itunes:explicit", strconv.FormatBool(episode.Explicit), 6)
	if episode.ImageURL != "" {
		buf.WriteString(fmt.Sprintf("      <itunes:image href=\"%s\" />\n", html.EscapeString(episode.ImageURL)))
	}

	buf.WriteString("    </item>\n")
}

// episodeLink builds the permalink from the episode's stable address
// encoding, falling back to the event id when encoding fails.
func (g *Generator) episodeLink(episode catalog.Episode, relayURLs []string) string {
	segment := episode.Address(relayURLs)
	if segment == "" {
		segment = episode.EventID
	}
	return fmt.Sprintf("%s/episode/%s", g.baseURL(), segment)
}

func (g *Generator) baseURL() string {
	if cfg.Get().BaseUrl != "" {
		return cfg.Get().BaseUrl
	}
	return fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

// formatDuration renders seconds as H:MM:SS, or M:SS under an hour.
func formatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
