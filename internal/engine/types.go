package engine

import "github.com/akoval/go_assess/internal/engine/catalog"

// Query kinds accepted by the recommend API.
const (
	QueryKindText = "text"
	QueryKindURL  = "url"
)

// --- Core recommend types ---

type RecommendRequest struct {
	Query  string `json:"query" jsonschema:"Hiring query, job description text, or a JD URL"`
	Kind   string `json:"type,omitempty" jsonschema:"Query kind: text (default) or url"`
	FinalK int    `json:"final_k,omitempty" jsonschema:"Number of recommendations to return (1-10, default 5)"`
}

// RecommendedAssessment is a catalog entry plus the justification for
// recommending it.
type RecommendedAssessment struct {
	catalog.Assessment
	Reason string `json:"reason,omitempty"`
}

// RecommendOutput is the JSON body returned by /api/recommend.
type RecommendOutput struct {
	Recommended []RecommendedAssessment `json:"recommended_assessments"`
	Reasoning   string                  `json:"reasoning_trace,omitempty"`
}

// RecommendResult wraps the response with per-request metadata for
// logging and history. The metadata never reaches the wire.
type RecommendResult struct {
	RecommendOutput
	Kind     string `json:"-"`
	CacheHit bool   `json:"-"`
	LLMUsed  bool   `json:"-"`
}

// --- Query analysis ---

// QueryFeatures are hints extracted locally from the query text, used
// for hard filtering and prompt construction.
type QueryFeatures struct {
	MaxDuration int    `json:"max_duration,omitempty"` // minutes; 0 = no cap
	RoleLevel   string `json:"role_level,omitempty"`   // entry, mid, senior
	SoftSkill   bool   `json:"soft_skill,omitempty"`
	Cleaned     string `json:"-"` // query with duration phrases removed
}
