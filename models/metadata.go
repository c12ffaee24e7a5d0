package models

// Basic metadata structures for titles as returned by the metadata providers.

// MetadataRecord holds the provider attributes for a single title.
type MetadataRecord struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Year      string  `json:"year,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Overview  string  `json:"overview,omitempty"`
	Poster    string  `json:"poster,omitempty"`
	Backdrop  string  `json:"backdrop,omitempty"`
	MediaType string  `json:"mediaType,omitempty"` // movie | series
	Genre     string  `json:"genre,omitempty"`
	Runtime   string  `json:"runtime,omitempty"`
	Director  string  `json:"director,omitempty"`
	Actors    string  `json:"actors,omitempty"`
}

// EnrichedRecord is a MetadataRecord joined with the local availability overlay.
type EnrichedRecord struct {
	MetadataRecord
	CanPlay      bool                    `json:"canPlay"`
	CanDownload  bool                    `json:"canDownload"`
	Availability *AvailabilityDescriptor `json:"availability,omitempty"`
}

// VideoSource is a playable source handed to the browser player.
type VideoSource struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
	Type    string `json:"type"`
	Title   string `json:"title"`
}
