package models

// AvailabilityDescriptor describes a title that can be played or downloaded locally.
type AvailabilityDescriptor struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	StreamURL   string `json:"streamUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	SourceURL   string `json:"sourceUrl,omitempty"` // external byte source for proxied downloads
	Filename    string `json:"filename,omitempty"`
	MediaKind   string `json:"type,omitempty"` // mp4, mkv, ...
	Quality     string `json:"quality,omitempty"`
	Size        string `json:"size,omitempty"`
	Duration    string `json:"duration,omitempty"`
}
