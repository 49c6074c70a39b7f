package protection

import (
	"context"
	"regexp"
	"strings"
)

// BotCategory classifies an automated client
type BotCategory string

const (
	BotAutomated    BotCategory = "AUTOMATED"
	BotHeadless     BotCategory = "HEADLESS"
	BotSearchEngine BotCategory = "SEARCH_ENGINE"
	BotPreview      BotCategory = "PREVIEW"
	BotCrawler      BotCategory = "CRAWLER"
)

type botPattern struct {
	category BotCategory
	pattern  *regexp.Regexp
}

// Order matters: search engines and link previews name themselves "bot" too.
var botPatterns = []botPattern{
	{BotSearchEngine, regexp.MustCompile(`(?i)(googlebot|google-inspectiontool|bingbot|duckduckbot|baiduspider|yandex(bot|images)|slurp|applebot|petalbot)`)},
	{BotPreview, regexp.MustCompile(`(?i)(facebookexternalhit|twitterbot|slackbot|whatsapp|telegrambot|discordbot|linkedinbot)`)},
	{BotHeadless, regexp.MustCompile(`(?i)(headlesschrome|phantomjs|puppeteer|playwright|selenium|webdriver|electron)`)},
	{BotAutomated, regexp.MustCompile(`(?i)(^curl/|^wget/|python-requests|python-urllib|aiohttp|httpx|go-http-client|axios/|node-fetch|undici|okhttp|java/|apache-httpclient|libwww-perl|scrapy|postmanruntime|insomnia|httpie)`)},
	{BotCrawler, regexp.MustCompile(`(?i)(bot\b|crawler|spider|crawl|scraper|ahrefs|semrush|mj12|dotbot)`)},
}

// searchEngineDomains are the reverse DNS suffixes genuine search crawlers resolve to
var searchEngineDomains = map[string][]string{
	"googlebot":   {".googlebot.com", ".google.com", ".googleusercontent.com"},
	"bingbot":     {".search.msn.com"},
	"duckduckbot": {".duckduckgo.com"},
	"baiduspider": {".baidu.com", ".baidu.jp"},
	"yandex":      {".yandex.ru", ".yandex.net", ".yandex.com"},
	"applebot":    {".applebot.apple.com"},
}

// ClassifyUserAgent returns the bot category of a user agent. An empty
// agent counts as automated. ok is false for ordinary browsers.
func ClassifyUserAgent(ua string) (BotCategory, bool) {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return BotAutomated, true
	}
	for _, p := range botPatterns {
		if p.pattern.MatchString(ua) {
			return p.category, true
		}
	}
	return "", false
}

// BotRule denies automated clients outside the allowed categories
type BotRule struct {
	allow map[BotCategory]bool
}

// NewBotRule creates a bot rule that lets the given categories through
func NewBotRule(allow ...BotCategory) *BotRule {
	r := &BotRule{allow: make(map[BotCategory]bool, len(allow))}
	for _, c := range allow {
		r.allow[c] = true
	}
	return r
}

func (r *BotRule) Name() string { return "bot" }

func (r *BotRule) Evaluate(_ context.Context, req *Request) (Decision, error) {
	category, isBot := ClassifyUserAgent(req.UserAgent)
	if !isBot || r.allow[category] {
		return Allow(), nil
	}
	return Deny(ReasonBot, string(category)), nil
}

// SpoofedBotRule verifies that a client claiming to be a search engine
// crawler really comes from that search engine, using reverse DNS followed
// by a forward confirmation.
type SpoofedBotRule struct {
	resolver Resolver
}

// NewSpoofedBotRule creates the rule
func NewSpoofedBotRule(resolver Resolver) *SpoofedBotRule {
	return &SpoofedBotRule{resolver: resolver}
}

func (r *SpoofedBotRule) Name() string { return "spoofed_bot" }

func (r *SpoofedBotRule) Evaluate(ctx context.Context, req *Request) (Decision, error) {
	suffixes := claimedSearchEngine(req.UserAgent)
	if suffixes == nil || req.IP == "" {
		return Allow(), nil
	}
	names, err := r.resolver.LookupAddr(ctx, req.IP)
	if err != nil {
		if isNotFound(err) {
			return Deny(ReasonSpoofedBot, string(BotSearchEngine)), nil
		}
		return Decision{}, err
	}
	for _, name := range names {
		host := strings.TrimSuffix(strings.ToLower(name), ".")
		if !hasAnySuffix(host, suffixes) {
			continue
		}
		addrs, err := r.resolver.LookupHost(ctx, host)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return Decision{}, err
		}
		for _, a := range addrs {
			if a == req.IP {
				return Allow(), nil
			}
		}
	}
	return Deny(ReasonSpoofedBot, string(BotSearchEngine)), nil
}

func claimedSearchEngine(ua string) []string {
	lower := strings.ToLower(ua)
	for token, suffixes := range searchEngineDomains {
		if strings.Contains(lower, token) {
			return suffixes
		}
	}
	return nil
}

func hasAnySuffix(host string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}
