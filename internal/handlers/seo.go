package handlers

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"opinions/internal/anon"
	"opinions/internal/services"
	"opinions/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	feedItemLimit   = 20
	feedExcerptSize = 300
)

type SEOHandler struct {
	opinions  *services.OpinionService
	siteURL   string
	clientURL string
}

func NewSEOHandler(opinions *services.OpinionService, siteURL, clientURL string) *SEOHandler {
	return &SEOHandler{opinions: opinions, siteURL: siteURL, clientURL: clientURL}
}

// RobotsTxt 只开放 feed，API 不需要被爬取
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, "User-agent: *\nDisallow: /api/\nAllow: /feed.xml\n")
}

// RSSFeed 生成 RSS 2.0 feed，匿名观点作者显示为 Anonymous
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	opinions, err := h.opinions.Latest(c.Request.Context(), feedItemLimit)
	if err != nil {
		RespondError(c, err)
		return
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Opinions</title>
    <link>` + escapeXML(h.clientURL) + `</link>
    <description>Latest opinions</description>
    <language>en</language>
    <lastBuildDate>` + time.Now().Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + escapeXML(h.siteURL) + `/feed.xml" rel="self" type="application/rss+xml"/>
`)

	for _, op := range opinions {
		link := fmt.Sprintf("%s/opinion/%s", h.clientURL, op.ID)
		author := op.User.Username
		if op.IsAnonymous {
			author = anon.DisplayName
		}
		excerpt := utils.PlainText(utils.RenderMarkdown(op.Content), feedExcerptSize)

		b.WriteString(`    <item>
      <title>` + escapeXML(op.Title) + `</title>
      <link>` + escapeXML(link) + `</link>
      <description>` + escapeXML(excerpt) + `</description>
      <author>` + escapeXML(author) + `</author>
      <category>` + escapeXML(op.Topic) + `</category>
      <pubDate>` + op.CreatedAt.Format(time.RFC1123Z) + `</pubDate>
      <guid isPermaLink="true">` + escapeXML(link) + `</guid>
    </item>
`)
	}

	b.WriteString(`  </channel>
</rss>`)

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, b.String())
}

// escapeXML 转义 XML 特殊字符
func escapeXML(s string) string {
	return html.EscapeString(s)
}
