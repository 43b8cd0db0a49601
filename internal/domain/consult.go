package domain

// Role identifies one advisory perspective
type Role string

const (
	RoleTax      Role = "tax"
	RoleLegal    Role = "legal"
	RoleStrategy Role = "strategy"
)

// AllRoles returns the three advisory roles in canonical order
func AllRoles() []Role {
	return []Role{RoleTax, RoleLegal, RoleStrategy}
}

// AnalysisStatus describes how a single analyst invocation settled
type AnalysisStatus string

const (
	StatusOK       AnalysisStatus = "ok"
	StatusTimedOut AnalysisStatus = "timed_out"
	StatusFailed   AnalysisStatus = "failed"
)

// DomainAnalysis is the result of one analyst invocation within a cycle.
// Text is populated only when Status is StatusOK.
type DomainAnalysis struct {
	Role   Role           `json:"role"`
	Status AnalysisStatus `json:"status"`
	Text   string         `json:"text,omitempty"`
}

// Outcome classifies a full fan-out cycle
type Outcome string

const (
	OutcomeComplete  Outcome = "complete"   // all three analysts succeeded
	OutcomePartial   Outcome = "partial"    // at least one succeeded, at least one did not
	OutcomeAllFailed Outcome = "all_failed" // zero analysts succeeded
)

// ConflictDetail represents a disagreement between advisory perspectives,
// framed as a trade-off. Resolution may be empty when the synthesis text
// described the conflict without resolving it.
type ConflictDetail struct {
	Area        string `json:"area"`
	Description string `json:"description"`
	Resolution  string `json:"resolution"`
}

// Recommendation is the structured result of one orchestration cycle.
// When NeedsClarification is true all list fields are empty and
// ClarificationQuestion carries the question to put to the user.
type Recommendation struct {
	RecommendedStructure  string           `json:"recommendedStructure"`
	KeyBenefits           []string         `json:"keyBenefits"`
	TradeOffs             []string         `json:"tradeOffs"`
	NextSteps             []string         `json:"nextSteps"`
	Conflicts             []ConflictDetail `json:"conflicts,omitempty"`
	NeedsClarification    bool             `json:"needsClarification,omitempty"`
	ClarificationQuestion string           `json:"clarificationQuestion,omitempty"`
	Partial               bool             `json:"partial,omitempty"`
}

// ConsultRequest is the body of POST /consult
type ConsultRequest struct {
	Query   string          `json:"query" validate:"required,min=10,max=5000"`
	Context *ConsultContext `json:"context,omitempty"`
}

// ConsultContext carries optional conversation state from the client.
// ClarificationAnswer answers the question currently pending on the
// session; Clarifications replays a full question→answer history for
// clients that keep state on their side.
type ConsultContext struct {
	SessionID           string            `json:"sessionId,omitempty"`
	ClarificationAnswer string            `json:"clarificationAnswer,omitempty"`
	Clarifications      map[string]string `json:"clarifications,omitempty"`
}

// ConsultResponse is the structured recommendation plus the session the
// conversation can continue under
type ConsultResponse struct {
	Recommendation
	SessionID string `json:"sessionId"`
}
