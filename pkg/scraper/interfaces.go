package scraper

import (
	"time"

	"liscraper/pkg/headers"
	"liscraper/pkg/models"
)

// HeaderSource supplies request headers for each simulated request
type HeaderSource interface {
	NextHeaders() headers.HeaderSet
}

// Pacer blocks before each simulated request and reports how long it waited
type Pacer interface {
	Wait() time.Duration
}

// RecordGenerator synthesizes the record for one identifier
type RecordGenerator interface {
	Generate(identifier string) (models.ProfileRecord, error)
}

// Progress receives collection events, e.g. for a terminal progress line
type Progress interface {
	Start(total int)
	Update(done, total int, identifier string, ok bool)
	Finish(collected, skipped int, elapsed time.Duration)
}
