package entity

// Issue categories recognized by the analysis stage.
const (
	CategoryMentalHealth = "mental_health"
	CategoryHousing      = "housing"
	CategoryFunding      = "funding"
	CategoryAcademic     = "academic"
	CategoryCareer       = "career"
	CategoryOther        = "other"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentMixed    = "mixed"
)

type AnalysisResult struct {
	ExecutiveSummary  string             `json:"executive_summary,omitempty"`
	KeyTopics         []KeyTopic         `json:"key_topics,omitempty"`
	IssuesIdentified  []Issue            `json:"issues_identified,omitempty"`
	ActionItems       []ActionItem       `json:"action_items,omitempty"`
	NotableQuotes     []Quote            `json:"notable_quotes,omitempty"`
	SentimentAnalysis *SentimentAnalysis `json:"sentiment_analysis,omitempty"`
	Recommendations   []string           `json:"recommendations,omitempty"`
	Patterns          []string           `json:"patterns,omitempty"`

	// Error is set when the analysis degraded to a partial result instead
	// of failing the pipeline.
	Error string `json:"error,omitempty"`
}

type KeyTopic struct {
	Topic       string `json:"topic"`
	Description string `json:"description"`
	TimeSpent   string `json:"time_spent"`
}

type Issue struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Sentiment   string `json:"sentiment"`
	MentionedBy string `json:"mentioned_by"`
}

type ActionItem struct {
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Owner    string `json:"owner"`
}

type Quote struct {
	Quote   string `json:"quote"`
	Speaker string `json:"speaker"`
	Context string `json:"context"`
}

type SentimentAnalysis struct {
	Overall     string             `json:"overall"`
	Breakdown   SentimentBreakdown `json:"breakdown"`
	Explanation string             `json:"explanation"`
}

type SentimentBreakdown struct {
	PositivePercent int `json:"positive_percent"`
	NeutralPercent  int `json:"neutral_percent"`
	NegativePercent int `json:"negative_percent"`
}
