// Package headers rotates browser request headers for simulated requests.
package headers

import (
	"math/rand/v2"
	"sync"
)

// HeaderSet maps HTTP header names to values. Each call to NextHeaders
// returns a fresh map that the caller owns.
type HeaderSet map[string]string

// UserAgent returns the User-Agent header
func (h HeaderSet) UserAgent() string {
	return h["User-Agent"]
}

// browserProfile is one catalog entry: a User-Agent and the Accept headers
// that browser actually sends
type browserProfile struct {
	userAgent      string
	accept         string
	acceptLanguage string
	acceptEncoding string
}

const (
	chromeAccept  = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8"
	firefoxAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	safariAccept  = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

var catalog = []browserProfile{
	{
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		accept:         chromeAccept,
		acceptLanguage: "en-US,en;q=0.9",
		acceptEncoding: "gzip, deflate, br",
	},
	{
		userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		accept:         chromeAccept,
		acceptLanguage: "en-US,en;q=0.9",
		acceptEncoding: "gzip, deflate, br",
	},
	{
		userAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		accept:         chromeAccept,
		acceptLanguage: "en-GB,en;q=0.9",
		acceptEncoding: "gzip, deflate, br",
	},
	{
		userAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
		accept:         firefoxAccept,
		acceptLanguage: "en-US,en;q=0.5",
		acceptEncoding: "gzip, deflate",
	},
	{
		userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
		accept:         safariAccept,
		acceptLanguage: "en-us",
		acceptEncoding: "gzip, deflate",
	},
}

// fixed headers sent with every request
var fixed = map[string]string{
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "max-age=0",
}

// UserAgents returns a copy of the catalog's User-Agent strings
func UserAgents() []string {
	agents := make([]string, len(catalog))
	for i, p := range catalog {
		agents[i] = p.userAgent
	}
	return agents
}

// Provider selects a browser profile uniformly at random, with replacement
type Provider struct {
	rng *rand.Rand
	mu  sync.Mutex
}

// NewProvider creates a provider drawing from rng. A nil rng uses an
// unseeded source.
func NewProvider(rng *rand.Rand) *Provider {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Provider{rng: rng}
}

// NextHeaders returns a new header set
func (p *Provider) NextHeaders() HeaderSet {
	p.mu.Lock()
	profile := catalog[p.rng.IntN(len(catalog))]
	p.mu.Unlock()

	h := make(HeaderSet, len(fixed)+4)
	h["User-Agent"] = profile.userAgent
	h["Accept"] = profile.accept
	h["Accept-Language"] = profile.acceptLanguage
	h["Accept-Encoding"] = profile.acceptEncoding
	for k, v := range fixed {
		h[k] = v
	}
	return h
}
