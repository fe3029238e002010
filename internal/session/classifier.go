// classifier.go — maps raw backend events onto render-ready verdicts.
//
// Classification is total: unknown kinds and malformed payloads collapse to
// an ignored verdict, never an error. A mid-stream decode failure must not
// take down the session.
package session

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Activity titles shown in the research timeline.
const (
	TitleClassifyIntent = "Classifying Intent"
	TitleGenerateQuery  = "Generating Search Queries"
	TitleWebResearch    = "Web Research"
	TitleReflection     = "Reflection"
	TitleFinalizeAnswer = "Finalizing Answer"
	TitleYouTubeSearch  = "YouTube Search"
)

// maxResearchLabels caps the topic labels shown for a web research step.
const maxResearchLabels = 3

// ActivityEvent is one rendered step of the research timeline.
type ActivityEvent struct {
	Title string `json:"title"`
	Data  string `json:"data"`
}

// Classification is the verdict for one raw event. Any combination of the
// fields may be set; all empty means the event is ignored.
type Classification struct {
	Activity  *ActivityEvent  // timeline step, nil when none
	Auxiliary *YouTubeResults // side payload, nil when none
	Terminal  bool            // true for the finalize step
}

// Ignored reports whether the event produced nothing renderable.
func (c Classification) Ignored() bool {
	return c.Activity == nil && c.Auxiliary == nil && !c.Terminal
}

// Classify inspects a raw backend event and produces its verdict.
func Classify(ev RawEvent) Classification {
	switch ev.Kind {
	case KindClassifyIntent:
		return classifyIntent(ev.Payload)
	case KindGenerateQuery:
		return classifyGenerateQuery(ev.Payload)
	case KindWebResearch:
		return classifyWebResearch(ev.Payload)
	case KindReflection:
		return classifyReflection(ev.Payload)
	case KindFinalizeAnswer:
		return Classification{
			Terminal: true,
			Activity: &ActivityEvent{
				Title: TitleFinalizeAnswer,
				Data:  "Composing and presenting the final answer.",
			},
		}
	case KindYouTubeAction:
		return classifyYouTube(ev.Payload)
	default:
		return Classification{}
	}
}

func classifyIntent(raw json.RawMessage) Classification {
	var p intentPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.IntentType == "" {
		return Classification{}
	}
	data := "intent: " + p.IntentType
	if p.Confidence != nil {
		data = fmt.Sprintf("intent: %s (confidence %.2f)", p.IntentType, *p.Confidence)
	}
	return Classification{Activity: &ActivityEvent{Title: TitleClassifyIntent, Data: data}}
}

func classifyGenerateQuery(raw json.RawMessage) Classification {
	var p queryPayload
	if err := json.Unmarshal(raw, &p); err != nil || len(p.QueryList) == 0 {
		return Classification{}
	}
	return Classification{Activity: &ActivityEvent{
		Title: TitleGenerateQuery,
		Data:  strings.Join(p.QueryList, ", "),
	}}
}

func classifyWebResearch(raw json.RawMessage) Classification {
	var p webResearchPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Classification{}
	}

	// First-seen label dedup, capped for display.
	seen := map[string]struct{}{}
	labels := make([]string, 0, maxResearchLabels)
	for _, src := range p.SourcesGathered {
		if src.Label == "" {
			continue
		}
		if _, ok := seen[src.Label]; ok {
			continue
		}
		seen[src.Label] = struct{}{}
		if len(labels) < maxResearchLabels {
			labels = append(labels, src.Label)
		}
	}
	related := "N/A"
	if len(labels) > 0 {
		related = strings.Join(labels, ", ")
	}

	return Classification{Activity: &ActivityEvent{
		Title: TitleWebResearch,
		Data:  fmt.Sprintf("Gathered %d sources. Related to: %s.", len(p.SourcesGathered), related),
	}}
}

func classifyReflection(raw json.RawMessage) Classification {
	var p reflectionPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.IsSufficient == nil {
		return Classification{}
	}

	data := "Search successful, generating final answer."
	if !*p.IsSufficient {
		target := "additional information"
		if len(p.FollowUpQueries) > 0 {
			target = strings.Join(p.FollowUpQueries, ", ")
		}
		data = "Need more information, searching for " + target
	}
	return Classification{Activity: &ActivityEvent{Title: TitleReflection, Data: data}}
}

func classifyYouTube(raw json.RawMessage) Classification {
	var p youtubePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.YouTubeResults == nil {
		return Classification{}
	}
	results := p.YouTubeResults

	if len(results.Videos) == 0 {
		return Classification{Activity: &ActivityEvent{
			Title: TitleYouTubeSearch,
			Data:  fmt.Sprintf("No videos found for %q.", results.Query),
		}}
	}

	payload := results.clone()
	return Classification{
		Activity: &ActivityEvent{
			Title: TitleYouTubeSearch,
			Data:  fmt.Sprintf("Found %d videos for %q.", len(results.Videos), results.Query),
		},
		Auxiliary: &payload,
	}
}
