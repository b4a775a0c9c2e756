package domain

import "time"

// Message senders. "future-you" is the simulated narrator voice.
const (
	SenderUser      = "user"
	SenderFutureYou = "future-you"
	SenderSystem    = "system"
)

// PersonaStyle is a tone switch passed into simulation prompts.
type PersonaStyle string

const (
	PersonaAnalytical PersonaStyle = "analytical"
	PersonaEmpathetic PersonaStyle = "empathetic"
)

// Message is one chat-style turn inside a conversation.
type Message struct {
	MessageID string    `json:"messageId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// SimulationOutput is the structured result of one simulation run. Every
// simulation, including the degraded fallback path, produces exactly these
// fields with five questions.
type SimulationOutput struct {
	Questions                     []string     `json:"questions"`
	OptimisticScenario            string       `json:"optimisticScenario"`
	ChallengingScenario           string       `json:"challengingScenario"`
	Summary                       string       `json:"summary"`
	PersonaStyle                  PersonaStyle `json:"personaStyle"`
	ConfidenceDeltaRecommendation float64      `json:"confidenceDeltaRecommendation"`
}

// Conversation is the persisted record of one simulation run. Each simulation
// creates a new conversation; repeated simulations of the same branch are not
// merged or versioned.
type Conversation struct {
	ConversationID   string           `json:"conversationId"`
	BranchID         string           `json:"branchId"`
	Messages         []Message        `json:"messages"`
	SimulationOutput SimulationOutput `json:"simulationOutput"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}
