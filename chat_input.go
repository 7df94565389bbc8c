package supportdesk

import (
	"encoding/json"
	"strings"
)

// ExtractUserInput pulls the user's message text out of a chat request body.
// Clients send several payload shapes depending on which surface they were
// built against, so the probes below run in order and the first hit wins:
//
//  1. params.input.content[] with an input_text item (thread create)
//  2. a top level "message" string
//  3. item.content[] with an input_text item
//  4. top level "content", either a list of input_text items or a string
//  5. "input" as a string or as an object with a content list
//  6. a top level "text" string
//
// An empty string means no user text was found; callers treat that as a
// history-only request rather than an error.
func ExtractUserInput(body []byte) string {
	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if params, ok := payload["params"].(map[string]any); ok {
		if input, ok := params["input"].(map[string]any); ok {
			if text := textFromContentList(input["content"]); text != "" {
				return strings.TrimSpace(text)
			}
		}
	}

	if message, ok := payload["message"].(string); ok && message != "" {
		return strings.TrimSpace(message)
	}

	if item, ok := payload["item"].(map[string]any); ok {
		if text := textFromContentList(item["content"]); text != "" {
			return strings.TrimSpace(text)
		}
	}

	switch content := payload["content"].(type) {
	case []any:
		if text := textFromContentList(content); text != "" {
			return strings.TrimSpace(text)
		}
	case string:
		if content != "" {
			return strings.TrimSpace(content)
		}
	}

	switch input := payload["input"].(type) {
	case string:
		if input != "" {
			return strings.TrimSpace(input)
		}
	case map[string]any:
		if text := textFromContentList(input["content"]); text != "" {
			return strings.TrimSpace(text)
		}
	}

	if text, ok := payload["text"].(string); ok && text != "" {
		return strings.TrimSpace(text)
	}

	return ""
}

// textFromContentList scans a ChatKit content list for the first input_text item.
func textFromContentList(raw any) string {
	items, ok := raw.([]any)
	if !ok {
		return ""
	}

	for _, entry := range items {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if item["type"] != "input_text" {
			continue
		}
		if text, ok := item["text"].(string); ok && text != "" {
			return text
		}
	}

	return ""
}
