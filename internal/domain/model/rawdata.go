package model

import (
	"strings"
	"time"
)

// errorMimePrefix marks raw files produced by a boefje run that crashed. The
// bytes API stores the traceback under an error/ mime type instead of real
// scan output.
const errorMimePrefix = "error/"

// BoefjeMeta is the bytes API record of one finished (or running) boefje
// execution. EndedAt is nil while the run is still in flight.
type BoefjeMeta struct {
	ID           string         `json:"id"`
	Boefje       Boefje         `json:"boefje"`
	InputOOI     string         `json:"input_ooi"`
	Arguments    map[string]any `json:"arguments,omitempty"`
	Organization string         `json:"organization"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
}

// MimeType is one content type attached to a raw file.
type MimeType struct {
	Value string `json:"value"`
}

// RawData describes one raw file stored by the bytes API, with the boefje
// run that produced it.
type RawData struct {
	ID         string     `json:"id"`
	BoefjeMeta BoefjeMeta `json:"boefje_meta"`
	MimeTypes  []MimeType `json:"mime_types"`
}

// HasErrorMimeType reports whether any attached mime type marks the
// producing boefje run as failed.
func (r RawData) HasErrorMimeType() bool {
	for _, mt := range r.MimeTypes {
		if strings.HasPrefix(mt.Value, errorMimePrefix) {
			return true
		}
	}
	return false
}

// RawDataReceivedEvent is the broker event published when the bytes API
// stored a new raw file.
type RawDataReceivedEvent struct {
	CreatedAt    time.Time `json:"created_at"`
	Organization string    `json:"organization"`
	RawData      RawData   `json:"raw_data"`
}

// NormalizerMeta is the bytes API record of one finished normalizer
// execution over a raw file.
type NormalizerMeta struct {
	ID         string     `json:"id"`
	RawData    RawData    `json:"raw_data"`
	Normalizer Normalizer `json:"normalizer"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// NormalizerMetaReceivedEvent is the broker event published when a
// normalizer finished processing a raw file.
type NormalizerMetaReceivedEvent struct {
	CreatedAt      time.Time      `json:"created_at"`
	Organization   string         `json:"organization"`
	NormalizerMeta NormalizerMeta `json:"normalizer_meta"`
}
