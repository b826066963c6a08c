package utils

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// 观点正文只走这一套渲染，API 的 contentHtml 和 RSS 摘要共用
var (
	opinionMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	opinionPolicy = newOpinionPolicy()
)

// 用户内容白名单：外链新窗口打开且不带 referrer
func newOpinionPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// RenderMarkdown 把观点正文转成可直接输出的 HTML。
// 解析失败时退回到对原文做清洗，不会把未过滤的输入原样返回。
func RenderMarkdown(body string) string {
	var out bytes.Buffer
	if err := opinionMarkdown.Convert([]byte(body), &out); err != nil {
		return opinionPolicy.Sanitize(body)
	}
	return EnhanceHTMLContent(string(opinionPolicy.SanitizeBytes(out.Bytes())))
}
