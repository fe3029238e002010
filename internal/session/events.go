// events.go — wire shapes for streamed research backend updates.
//
// The backend is a research graph (intent classification → query generation →
// web research ⇄ reflection → finalize, plus a YouTube search branch). Each
// streamed frame names the graph node that produced it plus a node-specific
// body; the per-kind payload structs here mirror those bodies.
package session

import "encoding/json"

// RawEvent is a single streamed update from the research backend.
type RawEvent struct {
	Kind    string          `json:"kind"`    // graph node that produced the update
	Payload json.RawMessage `json:"payload"` // node-specific body
}

// Event kinds emitted by the backend graph.
const (
	KindClassifyIntent = "classify_intent"
	KindGenerateQuery  = "generate_query"
	KindWebResearch    = "web_research"
	KindReflection     = "reflection"
	KindFinalizeAnswer = "finalize_answer"
	KindYouTubeAction  = "youtube_action"
)

// Message roles in the conversation transcript.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// Message is one entry of the conversation transcript.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ========================================
// Per-kind payload bodies
// ========================================

type intentPayload struct {
	IntentType string   `json:"intent_type"`
	Confidence *float64 `json:"confidence"`
}

type queryPayload struct {
	QueryList []string `json:"query_list"`
}

type sourceSegment struct {
	Label    string `json:"label"`
	ShortURL string `json:"short_url"`
	Value    string `json:"value"`
}

type webResearchPayload struct {
	SourcesGathered []sourceSegment `json:"sources_gathered"`
}

type reflectionPayload struct {
	// Pointer so an absent field is distinguishable from false.
	IsSufficient    *bool    `json:"is_sufficient"`
	KnowledgeGap    string   `json:"knowledge_gap"`
	FollowUpQueries []string `json:"follow_up_queries"`
}

type youtubePayload struct {
	YouTubeResults *YouTubeResults `json:"youtube_results"`
}

// YouTubeResults is the auxiliary payload surfaced beside an answer.
type YouTubeResults struct {
	Videos       []YouTubeVideo `json:"videos"`
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
}

// YouTubeVideo is one video entry of a YouTube search result.
type YouTubeVideo struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	Channel      string `json:"channel"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     string `json:"duration"`
	ViewCount    string `json:"view_count"`
	PublishedAt  string `json:"published_at"`
}

// clone returns a deep copy so stored payloads never alias caller slices.
func (r YouTubeResults) clone() YouTubeResults {
	out := r
	out.Videos = append([]YouTubeVideo(nil), r.Videos...)
	return out
}
