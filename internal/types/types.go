package types

// PolicyLink is an anchor classified as pointing to a legal document
type PolicyLink struct {
	Text string `json:"text" example:"Privacy Policy" description:"Visible anchor text"`
	URL  string `json:"url" example:"https://example.com/privacy" description:"Absolute link target"`
	Kind string `json:"kind,omitempty" example:"privacy_policy" description:"Best-effort document kind"`
}

// Mode selects the prompt template used for analysis
type Mode string

const (
	// ModeBrief requests a short summary
	ModeBrief Mode = "brief"
	// ModeDeep requests a sectioned, detailed analysis
	ModeDeep Mode = "deep"
)

// TopicCount is the number of times a heuristic topic pattern matched
type TopicCount struct {
	Topic string `json:"topic" example:"cookies"`
	Count int    `json:"count" example:"3"`
}

// AnalysisResult is the outcome of a single analysis invocation
type AnalysisResult struct {
	Summary        string       `json:"summary" description:"Markdown summary text"`
	UsedAI         bool         `json:"used_ai" description:"Whether a model produced the summary"`
	WasTruncated   bool         `json:"was_truncated" description:"Whether input was truncated before prompting"`
	WordCount      int          `json:"word_count"`
	CharacterCount int          `json:"character_count"`
	IsDeepAnalysis bool         `json:"is_deep_analysis"`
	ReadingMinutes int          `json:"reading_minutes"`
	Topics         []TopicCount `json:"topics,omitempty" description:"Heuristic topic counts when no model was used"`
	SourceURL      string       `json:"source_url,omitempty"`
	SourceTitle    string       `json:"source_title,omitempty"`
}

// Settings are the user-adjustable options
type Settings struct {
	ShowMagnifyingGlass  bool `json:"showMagnifyingGlass"`
	NotificationsEnabled bool `json:"notificationsEnabled"`
	AutoScan             bool `json:"autoScan"`
}

// DefaultSettings returns the settings used before the user changes anything
func DefaultSettings() Settings {
	return Settings{
		ShowMagnifyingGlass:  true,
		NotificationsEnabled: true,
		AutoScan:             true,
	}
}

// StoredLinks is the durable record of links detected on a tab
type StoredLinks struct {
	Count     int          `json:"count"`
	Links     []PolicyLink `json:"links"`
	Timestamp int64        `json:"timestamp" description:"Unix milliseconds when the links were stored"`
}
