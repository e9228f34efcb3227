package scraper

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "liscraper/pkg/errors"
	"liscraper/pkg/export"
	"liscraper/pkg/generator"
	"liscraper/pkg/headers"
	"liscraper/pkg/logger"
	"liscraper/pkg/models"
	"liscraper/pkg/ratelimit"
	"liscraper/pkg/retry"
)

// stepRecorder records the order of per-identifier steps
type stepRecorder struct {
	steps []string
}

type recordingHeaders struct{ rec *stepRecorder }

func (h recordingHeaders) NextHeaders() headers.HeaderSet {
	h.rec.steps = append(h.rec.steps, "headers")
	return headers.HeaderSet{"User-Agent": "test-agent"}
}

type recordingPacer struct {
	rec   *stepRecorder
	delay time.Duration
}

func (p recordingPacer) Wait() time.Duration {
	p.rec.steps = append(p.rec.steps, "wait")
	return p.delay
}

// scriptedGenerator fails or panics for chosen identifiers
type scriptedGenerator struct {
	rec      *stepRecorder
	fail     map[string]int // remaining failures per identifier, -1 for always
	panicFor string
	calls    map[string]int
	invalid  string
}

func newScriptedGenerator(rec *stepRecorder) *scriptedGenerator {
	return &scriptedGenerator{rec: rec, fail: map[string]int{}, calls: map[string]int{}}
}

func (g *scriptedGenerator) Generate(identifier string) (models.ProfileRecord, error) {
	if g.rec != nil {
		g.rec.steps = append(g.rec.steps, "generate")
	}
	g.calls[identifier]++

	if identifier == g.panicFor {
		panic("generator exploded")
	}
	if n, ok := g.fail[identifier]; ok && n != 0 {
		if n > 0 {
			g.fail[identifier] = n - 1
		}
		return models.ProfileRecord{}, errors.New("synthetic failure")
	}

	record := models.ProfileRecord{
		ProfileURL:  identifier,
		Username:    generator.ExtractUsername(identifier),
		Connections: 100 * g.calls[identifier],
		DataType:    models.DataTypeSimulated,
	}
	if identifier == g.invalid {
		record.DataType = "real"
	}
	return record, nil
}

type fakeProgress struct {
	started  int
	updates  []bool
	finished bool
}

func (p *fakeProgress) Start(total int) { p.started = total }

func (p *fakeProgress) Update(done, total int, identifier string, ok bool) {
	p.updates = append(p.updates, ok)
}

func (p *fakeProgress) Finish(collected, skipped int, elapsed time.Duration) { p.finished = true }

type fakeBudget struct {
	allow  bool
	waits  int
	allows int
}

func (b *fakeBudget) Allow() bool {
	b.allows++
	return b.allow
}

func (b *fakeBudget) Wait()  { b.waits++ }
func (b *fakeBudget) Reset() {}

func newTestCollector(t *testing.T, gen RecordGenerator, log logger.Logger, opts ...Option) (*Collector, *stepRecorder) {
	t.Helper()
	rec := &stepRecorder{}
	if sg, ok := gen.(*scriptedGenerator); ok && sg.rec == nil {
		sg.rec = rec
	}
	c := New(recordingHeaders{rec: rec}, recordingPacer{rec: rec}, gen, log, opts...)
	return c, rec
}

func TestCollectEndToEnd(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	delay, err := ratelimit.NewDelayPolicy(0, 0, rng)
	require.NoError(t, err)

	c := New(headers.NewProvider(rng), delay, generator.New(rng), logger.NewNopLogger())
	assert.Equal(t, StateIdle, c.State())

	input := []string{"linkedin.com/in/john-doe", "linkedin.com/in/jane-smith"}
	records := c.Collect(input)

	require.Len(t, records, 2)
	for i, r := range records {
		assert.Equal(t, input[i], r.ProfileURL)
		assert.Equal(t, models.DataTypeSimulated, r.DataType)
	}
	assert.Equal(t, "John Doe", records[0].Name)
	assert.Equal(t, StateCompleted, c.State())

	path := filepath.Join(t.TempDir(), "profiles.csv")
	_, err = export.NewCSVExporter().Export(records, path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimRight(string(data), "\n"), "\n"), 3)

	assert.Equal(t, 2, c.Statistics().TotalProfiles)
}

func TestCollectStepOrder(t *testing.T) {
	c, rec := newTestCollector(t, newScriptedGenerator(nil), nil)

	c.Collect([]string{"linkedin.com/in/a", "linkedin.com/in/b"})

	assert.Equal(t, []string{
		"headers", "wait", "generate",
		"headers", "wait", "generate",
	}, rec.steps)
}

func TestCollectSkipsFailuresAndPreservesOrder(t *testing.T) {
	gen := newScriptedGenerator(nil)
	gen.fail["linkedin.com/in/bad"] = -1
	gen.panicFor = "linkedin.com/in/boom"
	gen.invalid = "linkedin.com/in/fake"
	log := logger.NewTestLogger()
	progress := &fakeProgress{}

	c, _ := newTestCollector(t, gen, log, WithProgress(progress))
	input := []string{
		"linkedin.com/in/a",
		"linkedin.com/in/bad",
		"linkedin.com/in/b",
		"linkedin.com/in/boom",
		"linkedin.com/in/fake",
		"linkedin.com/in/c",
	}
	records := c.Collect(input)

	require.Len(t, records, 3)
	assert.Equal(t, "linkedin.com/in/a", records[0].ProfileURL)
	assert.Equal(t, "linkedin.com/in/b", records[1].ProfileURL)
	assert.Equal(t, "linkedin.com/in/c", records[2].ProfileURL)

	skipped := c.Skipped()
	require.Len(t, skipped, 3)
	assert.Equal(t, "linkedin.com/in/bad", skipped[0].Identifier)
	assert.Equal(t, "linkedin.com/in/boom", skipped[1].Identifier)
	assert.Equal(t, "linkedin.com/in/fake", skipped[2].Identifier)
	for _, s := range skipped {
		assert.True(t, errs.IsGeneration(s.Err), "%v", s.Err)
	}
	assert.Contains(t, skipped[1].Err.Error(), "generator exploded")

	warns := log.GetMessagesByLevel("WARN")
	require.Len(t, warns, 3)
	assert.Equal(t, "linkedin.com/in/bad", warns[0].Fields["identifier"])
	assert.Equal(t, c.RunID(), warns[0].Fields["run_id"])
	assert.True(t, log.HasMessage("Collection complete"))
	assert.True(t, log.HasMessage("Component stopped"))

	assert.Equal(t, 6, progress.started)
	assert.Equal(t, []bool{true, false, true, false, false, true}, progress.updates)
	assert.True(t, progress.finished)

	stats := c.Statistics()
	assert.Equal(t, 3, stats.TotalProfiles)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, StateCompleted, c.State())
}

func TestCollectRetriesGeneration(t *testing.T) {
	gen := newScriptedGenerator(nil)
	gen.fail["linkedin.com/in/flaky"] = 2
	gen.fail["linkedin.com/in/broken"] = -1

	cfg := &retry.Config{
		MaxAttempts: 3,
		Backoff:     &retry.ConstantBackoff{Delay: time.Second},
		Sleep:       func(time.Duration) {},
	}
	c, rec := newTestCollector(t, gen, nil, WithRetry(cfg))

	records := c.Collect([]string{"linkedin.com/in/flaky", "linkedin.com/in/broken"})

	require.Len(t, records, 1)
	assert.Equal(t, "linkedin.com/in/flaky", records[0].ProfileURL)
	assert.Equal(t, 3, gen.calls["linkedin.com/in/flaky"])
	assert.Equal(t, 3, gen.calls["linkedin.com/in/broken"])

	// one header set and one delay per identifier, regardless of attempts
	var waits int
	for _, s := range rec.steps {
		if s == "wait" {
			waits++
		}
	}
	assert.Equal(t, 2, waits)

	require.Len(t, c.Skipped(), 1)
	assert.True(t, errs.IsGeneration(c.Skipped()[0].Err))
}

func TestCollectWithoutRetryMakesSingleAttempt(t *testing.T) {
	gen := newScriptedGenerator(nil)
	gen.fail["linkedin.com/in/flaky"] = 1

	c, _ := newTestCollector(t, gen, nil)
	records := c.Collect([]string{"linkedin.com/in/flaky"})

	assert.Empty(t, records)
	assert.Equal(t, 1, gen.calls["linkedin.com/in/flaky"])
}

func TestCollectWaitsOnExhaustedBudget(t *testing.T) {
	budget := &fakeBudget{allow: false}
	c, _ := newTestCollector(t, newScriptedGenerator(nil), nil, WithBudget(budget))

	records := c.Collect([]string{"linkedin.com/in/a", "linkedin.com/in/b"})

	assert.Len(t, records, 2)
	assert.Equal(t, 2, budget.allows)
	assert.Equal(t, 2, budget.waits)
}

func TestCollectStartsNewRun(t *testing.T) {
	ids := []string{"run-1", "run-2"}
	c, _ := newTestCollector(t, newScriptedGenerator(nil), nil)
	c.newRunID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	assert.Empty(t, c.RunID())

	c.Collect([]string{"linkedin.com/in/a", "linkedin.com/in/b"})
	assert.Equal(t, "run-1", c.RunID())
	assert.Len(t, c.Results(), 2)

	c.Collect([]string{"linkedin.com/in/c"})
	assert.Equal(t, "run-2", c.RunID())
	results := c.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "linkedin.com/in/c", results[0].ProfileURL)
}

func TestStatisticsEmpty(t *testing.T) {
	c, _ := newTestCollector(t, newScriptedGenerator(nil), nil)

	stats := c.Statistics()
	assert.Equal(t, 0, stats.TotalProfiles)
	assert.Equal(t, 0.0, stats.AverageConnections)

	c.Collect(nil)
	assert.Equal(t, StateCompleted, c.State())
	assert.Equal(t, 0, c.Statistics().TotalProfiles)
}

func TestResultsAreCopies(t *testing.T) {
	c, _ := newTestCollector(t, newScriptedGenerator(nil), nil)

	records := c.Collect([]string{"linkedin.com/in/a"})
	records[0].ProfileURL = "mutated"

	assert.Equal(t, "linkedin.com/in/a", c.Results()[0].ProfileURL)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "completed", StateCompleted.String())
}
