package headers

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogSize(t *testing.T) {
	assert.GreaterOrEqual(t, len(UserAgents()), 5)
}

func TestNextHeadersContainsCatalogEntryAndFixedHeaders(t *testing.T) {
	p := NewProvider(rand.New(rand.NewPCG(1, 1)))
	agents := UserAgents()

	for i := 0; i < 50; i++ {
		h := p.NextHeaders()
		assert.Contains(t, agents, h.UserAgent())
		assert.NotEmpty(t, h["Accept"])
		assert.NotEmpty(t, h["Accept-Language"])
		assert.NotEmpty(t, h["Accept-Encoding"])
		assert.Equal(t, "1", h["DNT"])
		assert.Equal(t, "keep-alive", h["Connection"])
		assert.Equal(t, "1", h["Upgrade-Insecure-Requests"])
		assert.Equal(t, "max-age=0", h["Cache-Control"])
	}
}

func TestAcceptHeadersMatchUserAgent(t *testing.T) {
	p := NewProvider(rand.New(rand.NewPCG(2, 2)))

	for i := 0; i < 100; i++ {
		h := p.NextHeaders()
		var profile browserProfile
		for _, c := range catalog {
			if c.userAgent == h.UserAgent() {
				profile = c
			}
		}
		require.NotEmpty(t, profile.userAgent)
		assert.Equal(t, profile.accept, h["Accept"])
		assert.Equal(t, profile.acceptLanguage, h["Accept-Language"])
		assert.Equal(t, profile.acceptEncoding, h["Accept-Encoding"])
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	a := NewProvider(rand.New(rand.NewPCG(42, 42)))
	b := NewProvider(rand.New(rand.NewPCG(42, 42)))

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.NextHeaders(), b.NextHeaders())
	}
}

func TestRotationCoversCatalog(t *testing.T) {
	p := NewProvider(rand.New(rand.NewPCG(9, 9)))
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		seen[p.NextHeaders().UserAgent()] = true
	}
	assert.Len(t, seen, len(catalog))
}

func TestHeaderSetsAreIndependent(t *testing.T) {
	p := NewProvider(nil)
	first := p.NextHeaders()
	first["DNT"] = "0"

	assert.Equal(t, "1", p.NextHeaders()["DNT"])
}
