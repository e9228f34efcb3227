package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"

	"liscraper/pkg/models"
)

const (
	// PlaceholderURL is used for blank identifiers
	PlaceholderURL = "linkedin.com/in/unknown"
	// PlaceholderUsername is used when no username can be derived
	PlaceholderUsername = "unknown"

	minConnections  = 100
	maxConnections  = 5000
	maxEndorsements = 500
	minSkills       = 3
	maxSkills       = 6
)

var (
	titles = []string{
		"Software Engineer", "Senior Data Analyst", "Product Manager",
		"Engineering Manager", "UX Designer", "DevOps Engineer",
		"Marketing Specialist", "Solutions Architect", "Data Scientist",
		"Technical Recruiter",
	}
	companies = []string{
		"Acme Corp", "Globex", "Initech", "Umbrella Labs", "Stark Industries",
		"Wayne Enterprises", "Hooli", "Vandelay Industries", "Soylent Systems",
		"Cyberdyne",
	}
	locations = []string{
		"San Francisco, United States", "New York, United States",
		"London, United Kingdom", "Berlin, Germany", "Toronto, Canada",
		"Sydney, Australia", "Singapore", "Amsterdam, Netherlands",
		"Bangalore, India", "Paris, France",
	}
	skills = []string{
		"Python", "Go", "SQL", "Data Analysis", "Web Scraping", "Kubernetes",
		"Project Management", "Machine Learning", "Public Speaking",
		"Product Strategy", "Cloud Computing", "Leadership", "JavaScript",
		"Communication",
	}
)

// Option configures a Generator
type Option func(*Generator)

// WithClock sets the function used for scraped_at timestamps
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// Generator synthesizes profile records from identifiers
type Generator struct {
	rng *rand.Rand
	now func() time.Time
	mu  sync.Mutex
}

// New creates a generator drawing filler values from rng
func New(rng *rand.Rand, opts ...Option) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	g := &Generator{
		rng: rng,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a simulated record for identifier. Blank or malformed
// identifiers yield a placeholder record; the error is always nil.
func (g *Generator) Generate(identifier string) (models.ProfileRecord, error) {
	profileURL := strings.TrimSpace(identifier)
	if profileURL == "" {
		profileURL = PlaceholderURL
	}

	username := ExtractUsername(profileURL)
	name := nameFromSlug(username)

	g.mu.Lock()
	defer g.mu.Unlock()

	title := pick(g.rng, titles)
	company := pick(g.rng, companies)
	location := pick(g.rng, locations)

	record := models.ProfileRecord{
		ProfileURL:   profileURL,
		Username:     username,
		Name:         name,
		Title:        title,
		Company:      company,
		Location:     location,
		About:        fmt.Sprintf("%s at %s, based in %s.", title, company, location),
		Skills:       g.pickSkills(),
		Connections:  minConnections + g.rng.IntN(maxConnections-minConnections+1),
		Endorsements: g.rng.IntN(maxEndorsements + 1),
		ScrapedAt:    g.now(),
		DataType:     models.DataTypeSimulated,
	}
	return record, nil
}

func (g *Generator) pickSkills() []string {
	n := minSkills + g.rng.IntN(maxSkills-minSkills+1)
	perm := g.rng.Perm(len(skills))

	picked := make([]string, n)
	for i := 0; i < n; i++ {
		picked[i] = skills[perm[i]]
	}
	return picked
}

func pick(rng *rand.Rand, pool []string) string {
	return pool[rng.IntN(len(pool))]
}

// ExtractUsername returns the text after the last "/in/" with trailing
// slashes removed, or the last path segment when there is no "/in/".
// Query strings and fragments are ignored.
func ExtractUsername(identifier string) string {
	s := strings.TrimSpace(identifier)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}

	if i := strings.LastIndex(s, "/in/"); i >= 0 {
		s = strings.TrimRight(s[i+len("/in/"):], "/")
	} else {
		s = strings.TrimRight(s, "/")
		if i := strings.LastIndex(s, "/"); i >= 0 {
			s = s[i+1:]
		}
	}

	if s == "" {
		return PlaceholderUsername
	}
	return s
}

// nameFromSlug turns "john-doe" into "John Doe"
func nameFromSlug(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	if len(parts) == 0 {
		return "Unknown"
	}

	for i, p := range parts {
		runes := []rune(strings.ToLower(p))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
