package models

// SourceLink is an archive reference discovered on a publisher page.
type SourceLink struct {
	URL         string      `json:"url" yaml:"url"`
	Origin      string      `json:"origin" yaml:"origin"`
	SessionHint SessionType `json:"session_hint" yaml:"session_hint"`
}

// ArchiveEntry is one name-addressable file extracted from an archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}
