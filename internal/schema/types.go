package schema

import "time"

// Mode is the pipeline's operating regime. Each mode carries a distinct
// quality bar enforced by the source-tier filter and the Critic.
type Mode string

const (
	ModeStrict     Mode = "strict"
	ModeDiscovery  Mode = "discovery"
	ModeMonitor    Mode = "monitor"
)

// Tier ranks a source's authority. TierUnknown sources never pass strict
// filtering and are never promoted.
const TierUnknown = 999

// SourceTierType names the category a tier-6 item was enriched with.
const (
	SourceTypeLLMKnowledge = "llm_knowledge"
	SourceTypeWebReference = "web_reference"
)

// SourceItem is a single retrieved candidate, before or after tier
// enrichment.
type SourceItem struct {
	URL         string `json:"url" validate:"required"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Site        string `json:"site"`
	Vector      []float32 `json:"vector,omitempty"`

	ReasoningMetadata *ReasoningMetadata `json:"reasoning_metadata,omitempty"`
}

// ReasoningMetadata is stamped onto a SourceItem by the source-tier filter.
type ReasoningMetadata struct {
	Tier            int    `json:"tier"`
	Type            string `json:"type"`
	OriginalSource  string `json:"original_source"`
	FallbackWarning bool   `json:"fallback_warning,omitempty"`
}

// ConfidenceLabel is the Analyst's qualitative confidence label for a claim.
type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "low"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceHigh   ConfidenceLabel = "high"
)

// confidenceLabelScore is used when the Analyst supplies a label but no
// numeric score: low=2, medium=5, high=8, per the Analyst contract.
var confidenceLabelScore = map[ConfidenceLabel]float64{
	ConfidenceLow:    2,
	ConfidenceMedium: 5,
	ConfidenceHigh:   8,
}

// ArgumentNode is one atomic claim in the Analyst's reasoning.
type ArgumentNode struct {
	NodeID          string          `json:"node_id" validate:"required"`
	Claim           string          `json:"claim" validate:"required"`
	Confidence      ConfidenceLabel `json:"confidence" validate:"required,oneof=low medium high"`
	ConfidenceScore *float64        `json:"confidence_score,omitempty" validate:"omitempty,gte=0,lte=10"`
	DependsOn       []string        `json:"depends_on"`
	LogicWarnings   []string        `json:"logic_warnings,omitempty"`
}

// Score returns the node's numeric confidence: the explicit score if
// present, otherwise the score implied by the confidence label.
func (n *ArgumentNode) Score() float64 {
	if n.ConfidenceScore != nil {
		return *n.ConfidenceScore
	}
	return confidenceLabelScore[n.Confidence]
}

// IsAxiom reports whether this node is a premise-less starting claim.
func (n *ArgumentNode) IsAxiom() bool { return len(n.DependsOn) == 0 }

// ArgumentGraph is the Analyst's full set of claims. It may be cyclic at
// construction time; internal/chainanalysis detects and reports cycles.
type ArgumentGraph struct {
	Nodes []*ArgumentNode `json:"nodes"`
}

// ByID indexes nodes by node_id for O(1) lookup.
func (g *ArgumentGraph) ByID() map[string]*ArgumentNode {
	out := make(map[string]*ArgumentNode, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.NodeID] = n
	}
	return out
}

// KGEntity is one node of the optional knowledge graph.
type KGEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// KGRelationship is one edge of the optional knowledge graph.
type KGRelationship struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

// KnowledgeGraph holds the optional entity/relationship triples of an
// AnalystOutput. The Analyst's parser does not populate it and no stage,
// the Critic included, reads it; it never gates any decision.
type KnowledgeGraph struct {
	Entities      []KGEntity       `json:"entities,omitempty"`
	Relationships []KGRelationship `json:"relationships,omitempty"`
}

// GapResolution records an information gap the Analyst filled using
// tier-6 (LLM knowledge or web reference) sources. Kept separate from the
// argument graph; it does not change any node's confidence, and it is not
// passed to the Critic's prompt.
type GapResolution struct {
	Gap        string `json:"gap"`
	Resolution string `json:"resolution"`
	SourceType string `json:"source_type"` // llm_knowledge | web_reference
}

// AnalystOutput is the Analyst agent's validated contract.
type AnalystOutput struct {
	Draft          string          `json:"draft" validate:"required"`
	ArgumentGraph  []*ArgumentNode `json:"argument_graph" validate:"required,dive"`
	KnowledgeGraph *KnowledgeGraph `json:"knowledge_graph,omitempty"`
	Citations      []int           `json:"citations" validate:"required"`
	GapResolutions []GapResolution `json:"gap_resolutions,omitempty"`
}

// ClaimType enumerates the seven verifiable claim categories CoV extracts.
type ClaimType string

const (
	ClaimNumber       ClaimType = "number"
	ClaimDate         ClaimType = "date"
	ClaimPerson       ClaimType = "person"
	ClaimOrganization ClaimType = "organization"
	ClaimEvent        ClaimType = "event"
	ClaimStatistic    ClaimType = "statistic"
	ClaimQuote        ClaimType = "quote"
)

// Claim is one verifiable factual statement extracted from the draft.
type Claim struct {
	ClaimText      string    `json:"claim_text" validate:"required"`
	ClaimType      ClaimType `json:"claim_type" validate:"required,oneof=number date person organization event statistic quote"`
	SourceRef      *int      `json:"source_reference,omitempty"`
	Context        string    `json:"context"`
}

// ClaimsList is the output of CoV's claim-extraction stage.
type ClaimsList struct {
	Claims []Claim `json:"claims"`
}

// VerificationStatus is the per-claim outcome of CoV's verification stage.
type VerificationStatus string

const (
	StatusVerified          VerificationStatus = "verified"
	StatusUnverified        VerificationStatus = "unverified"
	StatusContradicted      VerificationStatus = "contradicted"
	StatusPartiallyVerified VerificationStatus = "partially_verified"
)

// VerificationResult is the outcome of verifying one Claim against the
// source set.
type VerificationResult struct {
	Claim       Claim              `json:"claim"`
	Status      VerificationStatus `json:"status" validate:"required,oneof=verified unverified contradicted partially_verified"`
	Evidence    *string            `json:"evidence,omitempty"`
	SourceID    *int               `json:"source_id,omitempty"`
	Explanation string             `json:"explanation"`
	Confidence  ConfidenceLabel    `json:"confidence" validate:"required,oneof=low medium high"`
}

// CoVResult aggregates every claim's verification outcome.
type CoVResult struct {
	Results          []VerificationResult `json:"results"`
	VerifiedCount    int                   `json:"verified_count"`
	UnverifiedCount  int                   `json:"unverified_count"`
	ContradictedCount int                  `json:"contradicted_count"`
	Summary          string                `json:"summary"`
}

// WeaknessSeverity ranks a StructuredWeakness.
type WeaknessSeverity string

const (
	SeverityInfo     WeaknessSeverity = "info"
	SeverityWarning  WeaknessSeverity = "warning"
	SeverityCritical WeaknessSeverity = "critical"
)

// StructuredWeakness is one machine-readable critique item the Critic
// attaches to a draft, optionally anchored to an argument node.
type StructuredWeakness struct {
	NodeID       *string          `json:"node_id,omitempty"`
	Severity     WeaknessSeverity `json:"severity" validate:"required,oneof=info warning critical"`
	Category     string           `json:"category"`
	Description  string           `json:"description"`
	SuggestedFix string           `json:"suggested_fix"`
}

// CriticStatus is the Critic's overall verdict.
type CriticStatus string

const (
	StatusApprove CriticStatus = "APPROVE"
	StatusWarn    CriticStatus = "WARN"
	StatusReject  CriticStatus = "REJECT"
)

// ConfidenceLevel is the Writer-facing confidence derived from CriticStatus.
type ConfidenceLevel string

const (
	ConfidenceLevelHigh   ConfidenceLevel = "High"
	ConfidenceLevelMedium ConfidenceLevel = "Medium"
	ConfidenceLevelLow    ConfidenceLevel = "Low"
)

// ConfidenceForStatus implements the fixed APPROVE->High, WARN->Medium,
// REJECT->Low mapping the Writer may never upgrade.
func ConfidenceForStatus(s CriticStatus) ConfidenceLevel {
	switch s {
	case StatusApprove:
		return ConfidenceLevelHigh
	case StatusWarn:
		return ConfidenceLevelMedium
	default:
		return ConfidenceLevelLow
	}
}

// CriticReview is the Critic agent's validated contract.
type CriticReview struct {
	Status               CriticStatus          `json:"status" validate:"required,oneof=APPROVE WARN REJECT"`
	Critique              string                `json:"critique"`
	Suggestions           []string              `json:"suggestions,omitempty"`
	ModeCompliance        bool                  `json:"mode_compliance"`
	LogicalGaps           []string              `json:"logical_gaps,omitempty"`
	SourceIssues          []string              `json:"source_issues,omitempty"`
	StructuredWeaknesses  []StructuredWeakness  `json:"structured_weaknesses,omitempty"`
	AutoEscalated         bool                  `json:"auto_escalated,omitempty"`
	EscalationNote        string                `json:"escalation_note,omitempty"`
}

// CriticalWeaknessCount counts structured weaknesses at critical severity.
func (r *CriticReview) CriticalWeaknessCount() int {
	n := 0
	for _, w := range r.StructuredWeaknesses {
		if w.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// WriterOutput is the Writer agent's validated contract.
type WriterOutput struct {
	FinalReport      string          `json:"final_report" validate:"required"`
	SourcesUsed      []int           `json:"sources_used"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level" validate:"required,oneof=High Medium Low"`
	MethodologyNote  string          `json:"methodology_note"`
}

// WriterPlan is the outline produced by the long-form plan-and-write path.
type WriterPlan struct {
	Outline         []string `json:"outline"`
	EstimatedLength int      `json:"estimated_length"`
	KeyArguments    []string `json:"key_arguments"`
}

// ClarificationType categorizes a clarification Question.
type ClarificationType string

const (
	ClarifyTime   ClarificationType = "time"
	ClarifyScope  ClarificationType = "scope"
	ClarifyEntity ClarificationType = "entity"
)

// TimeRange binds a time-type clarification option to concrete bounds.
type TimeRange struct {
	Start *string `json:"start"` // YYYY-MM-DD or nil
	End   *string `json:"end"`   // YYYY-MM-DD or nil
}

// ClarificationOption is one answer choice for a clarification Question.
type ClarificationOption struct {
	Label     string     `json:"label"`
	TimeRange *TimeRange `json:"time_range,omitempty"`
}

// Question is one clarification dimension the user may be asked to resolve.
type Question struct {
	ClarificationType ClarificationType     `json:"clarification_type" validate:"required,oneof=time scope entity"`
	Question          string                `json:"question" validate:"required"`
	Required          bool                  `json:"required"`
	Options           []ClarificationOption `json:"options" validate:"required,min=2,max=5"`
}

// ModeConfig is one entry of reasoning_mode_configs.
type ModeConfig struct {
	MaxTier            int      `json:"max_tier"`
	RequiredSections   []string `json:"required_sections"`
	AllowSpeculation   bool     `json:"allow_speculation"`
}

// SourceTierInfo is one entry of reasoning_source_tiers.
type SourceTierInfo struct {
	Tier int    `json:"tier"`
	Type string `json:"type"`
}

// QueryLog is the per-query structured observability record of spec §6.
type QueryLog struct {
	QueryID             string        `json:"query_id"`
	Stage               string        `json:"stage"`
	Duration            time.Duration `json:"duration"`
	RetryCount          int           `json:"retry_count"`
	FallbackUsed        bool          `json:"fallback_used"`
	CoVVerified         int           `json:"cov_verified,omitempty"`
	CoVUnverified       int           `json:"cov_unverified,omitempty"`
	CoVContradicted     int           `json:"cov_contradicted,omitempty"`
	CriticStatus        string        `json:"critic_status,omitempty"`
	CriticalNodes       int           `json:"critical_nodes,omitempty"`
	HasCycles           bool          `json:"has_cycles,omitempty"`
	LogicInconsistencies int         `json:"logic_inconsistencies,omitempty"`
	FinalConfidence     string        `json:"final_confidence,omitempty"`
}
