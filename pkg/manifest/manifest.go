package manifest

// RunSummary is the report printed at the end of a scrape run.
// It lists every source considered, what happened to it, and the placement
// of each document extracted from it.
type RunSummary struct {
	RunID          int64  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAt    string `json:"generated_at" yaml:"generated_at"`
	Year           string `json:"year" yaml:"year"`
	DryRun         bool   `json:"dry_run" yaml:"dry_run"`
	RulesVersion   string `json:"rules_version" yaml:"rules_version"`
	Interrupted    bool   `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	LedgerSize     int    `json:"ledger_size" yaml:"ledger_size"`
	NewSources     int    `json:"new_sources" yaml:"new_sources"`
	Pages          int    `json:"pages" yaml:"pages"`
	PagesFailed    int    `json:"pages_failed" yaml:"pages_failed"`
	SourcesSeen    int    `json:"sources_seen" yaml:"sources_seen"`
	SourcesSkipped int    `json:"sources_skipped" yaml:"sources_skipped"`
	SourcesFailed  int    `json:"sources_failed" yaml:"sources_failed"`
	SourcesEmpty   int    `json:"sources_empty" yaml:"sources_empty"`

	DocumentsPlaced    int `json:"documents_placed" yaml:"documents_placed"`
	DocumentsUnchanged int `json:"documents_unchanged" yaml:"documents_unchanged"`
	DocumentsConflict  int `json:"documents_conflict" yaml:"documents_conflict"`
	DocumentsExcluded  int `json:"documents_excluded" yaml:"documents_excluded"`
	DocumentsFailed    int `json:"documents_failed" yaml:"documents_failed"`

	TopSubjects []string        `json:"top_subjects,omitempty" yaml:"top_subjects,omitempty"`
	TopSessions []string        `json:"top_sessions,omitempty" yaml:"top_sessions,omitempty"`
	Sources     []SourceSummary `json:"sources" yaml:"sources"`
}

// SourceSummary is the outcome for one archive URL.
type SourceSummary struct {
	URL          string            `json:"url" yaml:"url"`
	Origin       string            `json:"origin,omitempty" yaml:"origin,omitempty"`
	Status       string            `json:"status" yaml:"status"` // processed, skipped, empty, failed
	ErrorType    string            `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Documents    []DocumentSummary `json:"documents,omitempty" yaml:"documents,omitempty"`
}

// DocumentSummary is the outcome for one document inside an archive.
type DocumentSummary struct {
	Name         string   `json:"name" yaml:"name"`
	Subject      string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Session      string   `json:"session,omitempty" yaml:"session,omitempty"`
	Destinations []string `json:"destinations,omitempty" yaml:"destinations,omitempty"`
	Outcome      string   `json:"outcome" yaml:"outcome"`
	ErrorType    string   `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// Failed reports whether anything in the run went wrong.
func (s *RunSummary) Failed() bool {
	return s.Interrupted || s.PagesFailed > 0 || s.SourcesFailed > 0 || s.DocumentsFailed > 0
}
