package orchestrator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// GeneratedContent is the parsed output of an AI generation call
type GeneratedContent struct {
	Summary            string
	Narrative          string
	Days               []GeneratedDay
	TransportationTips string
	PackingList        []string
}

// GeneratedDay is one day of AI-produced structure
type GeneratedDay struct {
	Day        int
	Date       string
	Theme      string
	Narrative  string
	Activities []GeneratedItem
	Meals      []GeneratedItem
}

// GeneratedItem is a place reference produced by the model, not yet verified
type GeneratedItem struct {
	Name          string
	Description   string
	Category      string
	Address       string
	Time          string
	EstimatedCost *float64
}

var (
	jsonBlockPattern     = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	jsonObjectPattern    = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// extractJSON pulls a JSON object out of model text, tolerating markdown
// fences and trailing commas.
func extractJSON(text string) string {
	raw := ""
	if m := jsonBlockPattern.FindStringSubmatch(text); len(m) > 1 {
		raw = m[1]
	} else if m := jsonObjectPattern.FindString(text); m != "" {
		raw = m
	}
	if raw == "" {
		return ""
	}
	return trailingCommaPattern.ReplaceAllString(raw, "$1")
}

// ParseGeneratedContent accepts a bare string, {content}, {message:{content}},
// chat-completion style {choices:[{message:{content}}]} or a structured object.
func ParseGeneratedContent(raw json.RawMessage) (*GeneratedContent, error) {
	data := decodeAny(raw)
	if data == nil {
		return nil, fmt.Errorf("AI response contained no content")
	}

	if text, ok := assistantText(data); ok {
		return parseText(text)
	}

	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("AI response has unsupported shape %T", data)
	}
	for _, key := range []string{"itinerary", "content", "data"} {
		if inner, ok := m[key].(map[string]any); ok {
			m = inner
			break
		}
	}
	content := fromObject(m)
	if content.empty() {
		return nil, fmt.Errorf("AI response contained no itinerary content")
	}
	return content, nil
}

func assistantText(data any) (string, bool) {
	switch v := data.(type) {
	case string:
		return v, true
	case map[string]any:
		if choices, ok := v["choices"].([]any); ok && len(choices) > 0 {
			if choice, ok := choices[0].(map[string]any); ok {
				if msg, ok := choice["message"].(map[string]any); ok {
					if s, ok := msg["content"].(string); ok {
						return s, true
					}
				}
				if s, ok := choice["text"].(string); ok {
					return s, true
				}
			}
		}
		if msg, ok := v["message"].(map[string]any); ok {
			if s, ok := msg["content"].(string); ok {
				return s, true
			}
		}
		for _, key := range []string{"content", "text", "response"} {
			if s, ok := v[key].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

func parseText(text string) (*GeneratedContent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("AI response contained no content")
	}

	if candidate := extractJSON(text); candidate != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			if inner, ok := obj["itinerary"].(map[string]any); ok {
				obj = inner
			}
			if content := fromObject(obj); !content.empty() {
				return content, nil
			}
		}
	}

	summary := text
	if idx := strings.Index(text, "\n\n"); idx > 0 {
		summary = text[:idx]
	}
	return &GeneratedContent{Summary: strings.TrimSpace(summary), Narrative: text}, nil
}

func fromObject(m map[string]any) *GeneratedContent {
	c := &GeneratedContent{
		Summary:            str(m, "summary", "overview", "description"),
		Narrative:          str(m, "narrative"),
		TransportationTips: str(m, "transportationTips", "transportation_tips", "transportation"),
		PackingList:        strList(m, "packingList", "packing_list"),
	}
	for i, item := range listAt(m, "days", "dailyPlans", "daily_plans", "itinerary") {
		dm, ok := item.(map[string]any)
		if !ok {
			continue
		}
		day := GeneratedDay{
			Date:       str(dm, "date"),
			Theme:      str(dm, "theme", "title"),
			Narrative:  str(dm, "narrative", "description", "notes", "summary"),
			Activities: generatedItems(dm, "activities", "places"),
			Meals:      generatedItems(dm, "meals", "restaurants", "dining"),
		}
		day.Day = i + 1
		if n := num(dm, "day", "dayNumber"); n != nil && *n >= 1 {
			day.Day = int(*n)
		}
		c.Days = append(c.Days, day)
	}
	return c
}

func generatedItems(m map[string]any, keys ...string) []GeneratedItem {
	var out []GeneratedItem
	for _, k := range keys {
		arr, ok := m[k].([]any)
		if !ok {
			continue
		}
		for _, item := range arr {
			switch v := item.(type) {
			case string:
				if v != "" {
					out = append(out, GeneratedItem{Name: v})
				}
			case map[string]any:
				gi := GeneratedItem{
					Name:          str(v, "name", "title", "place"),
					Description:   str(v, "description", "details"),
					Category:      str(v, "category", "type"),
					Address:       str(v, "address", "location"),
					Time:          str(v, "time", "startTime"),
					EstimatedCost: num(v, "estimatedCost", "cost", "price"),
				}
				if gi.Name != "" {
					out = append(out, gi)
				}
			}
		}
		break
	}
	return out
}

func (c *GeneratedContent) empty() bool {
	return c.Summary == "" && c.Narrative == "" && len(c.Days) == 0 &&
		c.TransportationTips == "" && len(c.PackingList) == 0
}
