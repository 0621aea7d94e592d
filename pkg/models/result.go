package models

import "time"

// ExtractionResult is the outcome of processing a single file
type ExtractionResult struct {
	File    string   `json:"file"`
	BuildID *string  `json:"buildid"`
	Backend string   `json:"-"`
	Info    FileInfo `json:"info"`
}

// HasBuildID reports whether a non-empty Build ID was extracted
func (r *ExtractionResult) HasBuildID() bool {
	return r.BuildID != nil && *r.BuildID != ""
}

// ID returns the Build ID or an empty string
func (r *ExtractionResult) ID() string {
	if r.BuildID == nil {
		return ""
	}
	return *r.BuildID
}

// ScanResults contains the complete scan results
type ScanResults struct {
	// Summary
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	ScanPath   string        `json:"scan_path"`
	Recursive  bool          `json:"recursive"`
	Candidates int           `json:"candidates"`
	Found      int           `json:"found"`

	// Per-file results in discovery order
	Results []*ExtractionResult `json:"results"`

	// Files for which no backend produced a Build ID
	Missing []string `json:"missing,omitempty"`

	// Backend name -> number of Build IDs it produced
	ByBackend map[string]int `json:"by_backend,omitempty"`

	// Sniffed format label -> number of missing files with that format
	MissingFormats map[string]int `json:"missing_formats,omitempty"`
}

// AddResult adds a result and updates counters
func (r *ScanResults) AddResult(res *ExtractionResult) {
	r.Results = append(r.Results, res)

	if !res.HasBuildID() {
		r.Missing = append(r.Missing, res.File)
		return
	}

	r.Found++
	if r.ByBackend == nil {
		r.ByBackend = make(map[string]int)
	}
	r.ByBackend[res.Backend]++
}

// AddMissingFormat counts the sniffed format of a file without a Build ID
func (r *ScanResults) AddMissingFormat(format string) {
	if r.MissingFormats == nil {
		r.MissingFormats = make(map[string]int)
	}
	r.MissingFormats[format]++
}

// FilterWithBuildID returns the results that carry a Build ID, preserving order
func FilterWithBuildID(results []*ExtractionResult) []*ExtractionResult {
	valid := make([]*ExtractionResult, 0, len(results))
	for _, res := range results {
		if res.HasBuildID() {
			valid = append(valid, res)
		}
	}
	return valid
}
