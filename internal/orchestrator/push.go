package orchestrator

import "github.com/basegraph/salesassist/internal/domain"

const (
	pushTypeSlowPathComplete = "slow_path_complete"
	pushTypeSlowPathError    = "slow_path_error"
)

// pushMessage is the envelope every push message carries: a `type`
// discriminator with a `data` or `message` payload.
type pushMessage struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// slowPathCompletePayload is the push data for a successful Slow Path
// attempt. Modules are nested under "modules" as their own object,
// distinct from domain.OpusMagnumDocument's flat Go field layout.
type slowPathCompletePayload struct {
	OverallConfidence float64             `json:"overall_confidence"`
	RecommendedStage  domain.JourneyStage `json:"recommended_stage"`
	Modules           opusMagnumModules   `json:"modules"`

	ModelUsed      string `json:"model_used"`
	PrimaryModel   string `json:"primary_model"`
	FallbackUsed   bool   `json:"fallback_used"`
	FallbackModel  string `json:"fallback_model,omitempty"`
	FallbackReason string `json:"fallback_reason,omitempty"`
}

type opusMagnumModules struct {
	ClientSummary        domain.ClientSummaryModule        `json:"client_summary"`
	TacticalIndicators   domain.TacticalIndicatorsModule    `json:"tactical_indicators"`
	PsychometricProfile  domain.PsychometricProfileModule   `json:"psychometric_profile"`
	MotivationAnalysis   domain.MotivationAnalysisModule    `json:"motivation_analysis"`
	PredictivePaths      domain.PredictivePathsModule       `json:"predictive_paths"`
	StrategicPlaybook    domain.StrategicPlaybookModule     `json:"strategic_playbook"`
	DecisionMakerVectors domain.DecisionMakerVectorsModule  `json:"decision_maker_vectors"`
}

func buildCompletePayload(doc *domain.OpusMagnumDocument, modelUsed, primaryModel string, fallbackUsed bool, fallbackModel, fallbackReason string) slowPathCompletePayload {
	return slowPathCompletePayload{
		OverallConfidence: doc.OverallConfidence,
		RecommendedStage:  doc.RecommendedStage,
		Modules: opusMagnumModules{
			ClientSummary:        doc.ClientSummary,
			TacticalIndicators:   doc.TacticalIndicators,
			PsychometricProfile:  doc.PsychometricProfile,
			MotivationAnalysis:   doc.MotivationAnalysis,
			PredictivePaths:      doc.PredictivePaths,
			StrategicPlaybook:    doc.StrategicPlaybook,
			DecisionMakerVectors: doc.DecisionMakerVectors,
		},
		ModelUsed:      modelUsed,
		PrimaryModel:   primaryModel,
		FallbackUsed:   fallbackUsed,
		FallbackModel:  fallbackModel,
		FallbackReason: fallbackReason,
	}
}
