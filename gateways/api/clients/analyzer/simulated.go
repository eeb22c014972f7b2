package analyzer

import (
	"context"
	"log/slog"

	"github.com/joeleesuh/delegate-ai/services/meeting/entity"
)

// Simulated is the analyzer selected when no language-model key is
// configured. It returns a fixed, deterministic analysis matching the
// simulated transcript.
type Simulated struct {
	log *slog.Logger
}

func NewSimulated() *Simulated {
	return &Simulated{log: slog.Default()}
}

func (s *Simulated) Analyze(ctx context.Context, transcript, meetingLabel string) (*entity.AnalysisResult, error) {
	s.log.Warn("simulated analysis in use, configure LLM_API_KEY for real output",
		slog.String("meeting", meetingLabel))
	return DemoAnalysis(), nil
}

// DemoAnalysis is the canned result used by the simulated analyzer.
func DemoAnalysis() *entity.AnalysisResult {
	return &entity.AnalysisResult{
		ExecutiveSummary: "Meeting discussed critical graduate student concerns including mental health resources and housing affordability. Multiple departments reported 3-4 week wait times for counseling appointments. Students spending 60%+ of stipends on rent.",
		KeyTopics: []entity.KeyTopic{
			{
				Topic:       "Mental Health Resources",
				Description: "Students reporting 3-4 week wait times for counseling. Need for PhD-specific support.",
				TimeSpent:   "High importance, mentioned by multiple speakers",
			},
			{
				Topic:       "Housing Affordability",
				Description: "Cambridge rent consuming 60%+ of stipends. Students considering leaving MIT.",
				TimeSpent:   "Medium-high importance",
			},
		},
		IssuesIdentified: []entity.Issue{
			{
				Title:       "Mental Health Counseling Wait Times",
				Description: "Students waiting 3-4 weeks for appointments. PhD students need specialized support for research stress.",
				Category:    entity.CategoryMentalHealth,
				Priority:    entity.PriorityHigh,
				Sentiment:   entity.SentimentNegative,
				MentionedBy: "Multiple students across departments",
			},
			{
				Title:       "Housing Cost Burden",
				Description: "Rent taking 60%+ of student stipends, particularly affecting international students without family nearby.",
				Category:    entity.CategoryHousing,
				Priority:    entity.PriorityHigh,
				Sentiment:   entity.SentimentNegative,
				MentionedBy: "Graduate students",
			},
		},
		ActionItems: []entity.ActionItem{
			{
				Action:   "Bring mental health wait times to GSC as urgent priority",
				Priority: entity.PriorityHigh,
				Owner:    "Representative",
			},
			{
				Action:   "Request meeting with Mental Health Services director",
				Priority: entity.PriorityHigh,
				Owner:    "Representative",
			},
			{
				Action:   "Compile housing cost data from students",
				Priority: entity.PriorityMedium,
				Owner:    "Representative",
			},
		},
		NotableQuotes: []entity.Quote{
			{
				Quote:   "Many students are waiting 3 to 4 weeks for counseling appointments.",
				Speaker: "Speaker 2",
				Context: "Highlighting urgent mental health resource gap",
			},
			{
				Quote:   "Many students are spending over 60% of their stipend on rent. It's becoming financially unsustainable.",
				Speaker: "Speaker 2",
				Context: "Housing affordability crisis",
			},
		},
		SentimentAnalysis: &entity.SentimentAnalysis{
			Overall: entity.SentimentNegative,
			Breakdown: entity.SentimentBreakdown{
				PositivePercent: 10,
				NeutralPercent:  25,
				NegativePercent: 65,
			},
			Explanation: "Predominantly negative sentiment reflecting serious concerns about mental health and housing. Students appreciate being heard but express frustration with current situation.",
		},
		Recommendations: []string{
			"Schedule emergency GSC meeting to address mental health resource shortage",
			"Survey graduate students across all departments on mental health needs and wait times",
			"Research peer institution models for mental health support and housing subsidies",
			"Propose pilot housing subsidy program for graduate students",
			"Create task force to address both issues with administration",
		},
		Patterns: []string{
			"Mental health concerns span multiple departments - suggests systemic university-wide issue",
			"Housing concerns disproportionately affect international students",
			"Students want action, not just discussion - emphasis on concrete solutions",
		},
	}
}
