package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of block detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockAntiBot    BlockType = "anti_bot"
	BlockJSShell    BlockType = "js_shell"
)

// jsShellMaxBytes bounds the bodies checked for the JS-only shell pattern.
const jsShellMaxBytes = 2000

// blockRule matches when the lowercased body contains any of its markers.
type blockRule struct {
	kind    BlockType
	markers []string
}

// Order matters: the first matching rule names the block.
var bodyRules = []blockRule{
	{BlockCloudflare, []string{"checking your browser", "cf-browser-verification", "cf-challenge", "challenges.cloudflare.com"}},
	{BlockAntiBot, []string{"bot detection", "are you a robot", "automated access", "unusual traffic from your computer"}},
	{BlockCaptcha, []string{"captcha"}},
}

// DetectBlock reports whether a response is an anti-bot wall rather than the
// page. A body that already carries JSON-LD is never treated as blocked,
// except behind a Cloudflare 403/503 where the status alone is decisive.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}
	if isCloudflareDenial(resp) {
		return true, BlockCloudflare
	}

	lower := strings.ToLower(string(body))
	if strings.Contains(lower, "application/ld+json") {
		return false, BlockNone
	}

	for _, rule := range bodyRules {
		for _, m := range rule.markers {
			if strings.Contains(lower, m) {
				return true, rule.kind
			}
		}
	}

	if len(body) < jsShellMaxBytes && isJSShell(lower) {
		return true, BlockJSShell
	}
	return false, BlockNone
}

func isCloudflareDenial(resp *http.Response) bool {
	if resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}
	h := resp.Header
	return h.Get("cf-ray") != "" || h.Get("cf-cache-status") != "" || strings.EqualFold(h.Get("server"), "cloudflare")
}

// isJSShell spots near-empty pages that only bootstrap scripts or redirect.
func isJSShell(lower string) bool {
	if strings.Contains(lower, "<noscript") && strings.Contains(lower, "javascript") {
		return true
	}
	return strings.Contains(lower, `http-equiv="refresh"`)
}
