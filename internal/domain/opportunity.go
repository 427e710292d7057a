package domain

import "time"

// Opportunity is one normalized RFP/tender posting.
type Opportunity struct {
	Organization string
	Region       string
	Sector       string
	Link         string
	Deadline     string // YYYY-MM-DD
	Budget       string
	LastUpdated  time.Time

	Source string // emitting adapter tag, not persisted
}

// RawFragment is what an adapter emits before normalization. Structured
// sources fill the named fields; unstructured ones leave them empty and put
// the posting's prose into Text.
type RawFragment struct {
	Source       string
	Organization string
	Region       string
	Sector       string
	Link         string
	Deadline     string
	Budget       string
	Text         string
}
