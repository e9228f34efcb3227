package models

import "time"

// DataTypeSimulated tags every record produced without a network call
const DataTypeSimulated = "simulated"

// ProfileRecord is a single synthesized profile
type ProfileRecord struct {
	ProfileURL   string    `json:"profile_url"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	About        string    `json:"about"`
	Skills       []string  `json:"skills"`
	Connections  int       `json:"connections"`
	Endorsements int       `json:"endorsements"`
	ScrapedAt    time.Time `json:"scraped_at"`
	DataType     string    `json:"data_type"`
}

// IsSimulated reports whether the record carries the simulated tag
func (r ProfileRecord) IsSimulated() bool {
	return r.DataType == DataTypeSimulated
}

// Clone returns a copy that shares no slices with r
func (r ProfileRecord) Clone() ProfileRecord {
	c := r
	if r.Skills != nil {
		c.Skills = append([]string(nil), r.Skills...)
	}
	return c
}

// RunStatistics is a view over a list of collected records
type RunStatistics struct {
	TotalProfiles       int     `json:"total_profiles"`
	AverageConnections  float64 `json:"average_connections"`
	AverageEndorsements float64 `json:"average_endorsements"`
	ProfilesWithSkills  int     `json:"profiles_with_skills"`
	Skipped             int     `json:"skipped"`
}

// ComputeStatistics aggregates records. An empty list yields zero values.
func ComputeStatistics(records []ProfileRecord) RunStatistics {
	stats := RunStatistics{TotalProfiles: len(records)}
	if len(records) == 0 {
		return stats
	}

	var connections, endorsements int
	for _, r := range records {
		connections += r.Connections
		endorsements += r.Endorsements
		if len(r.Skills) > 0 {
			stats.ProfilesWithSkills++
		}
	}

	stats.AverageConnections = float64(connections) / float64(len(records))
	stats.AverageEndorsements = float64(endorsements) / float64(len(records))
	return stats
}
