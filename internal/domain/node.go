package domain

import "time"

// SoulStateNode is one persisted history entry.
type SoulStateNode struct {
	ID             string       `json:"id"`
	Timestamp      int64        `json:"timestamp"`
	Input          string       `json:"input"`
	MemoryFragment string       `json:"memory_fragment,omitempty"`
	Deliberation   Deliberation `json:"deliberation"`
	IsError        bool         `json:"isError,omitempty"`
}

// Time returns the node timestamp as a time.Time.
func (n SoulStateNode) Time() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// Turn converts the node into a rolling-memory entry.
func (n SoulStateNode) Turn() MemoryTurn {
	return MemoryTurn{User: n.Input, AI: n.Deliberation.FinalSynthesis.ResponseText}
}

type NavigatorRating struct {
	ConnectionScore float64 `json:"connection_score"`
	GrowthScore     float64 `json:"growth_score"`
}

// InsightReport summarizes a whole trajectory. It is recomputed on demand
// and never persisted.
type InsightReport struct {
	EmotionalArc    string          `json:"emotional_arc"`
	KeyInsights     []string        `json:"key_insights"`
	HiddenNeeds     string          `json:"hidden_needs"`
	NavigatorRating NavigatorRating `json:"navigator_rating"`
	ClosingAdvice   string          `json:"closing_advice"`
}

// HistoryEventType names a change applied to a session's history.
type HistoryEventType string

const (
	HistoryAppended       HistoryEventType = "appended"
	HistoryAvatarsPatched HistoryEventType = "avatars_patched"
	HistoryPurged         HistoryEventType = "purged"
)

// HistoryEvent is published after a history mutation has been persisted.
type HistoryEvent struct {
	Type    HistoryEventType `json:"type"`
	Session string           `json:"session"`
	NodeID  string           `json:"node_id,omitempty"`
	Node    *SoulStateNode   `json:"node,omitempty"`
}
