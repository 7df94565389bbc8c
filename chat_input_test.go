package supportdesk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	supportdesk "github.com/goliatone/go-supportdesk"
)

func TestExtractUserInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			"thread create params",
			`{"params":{"input":{"content":[{"type":"input_text","text":"hello there"}]}}}`,
			"hello there",
		},
		{
			"plain message field",
			`{"message":"I need help"}`,
			"I need help",
		},
		{
			"item content list",
			`{"item":{"content":[{"type":"input_text","text":"reset my password"}]}}`,
			"reset my password",
		},
		{
			"top level content list",
			`{"content":[{"type":"input_text","text":"list my tasks"}]}`,
			"list my tasks",
		},
		{
			"top level content string",
			`{"content":"just a string"}`,
			"just a string",
		},
		{
			"input as string",
			`{"input":"short form"}`,
			"short form",
		},
		{
			"input as object",
			`{"input":{"content":[{"type":"input_text","text":"from object"}]}}`,
			"from object",
		},
		{
			"text field",
			`{"text":"last resort"}`,
			"last resort",
		},
		{
			"params win over message",
			`{"params":{"input":{"content":[{"type":"input_text","text":"from params"}]}},"message":"from message"}`,
			"from params",
		},
		{
			"skips non text content items",
			`{"content":[{"type":"input_image","url":"x"},{"type":"input_text","text":"after image"}]}`,
			"after image",
		},
		{
			"whitespace trimmed",
			`{"message":"  padded  "}`,
			"padded",
		},
		{
			"empty object",
			`{}`,
			"",
		},
		{
			"invalid json",
			`{not json`,
			"",
		},
		{
			"content list without text",
			`{"content":[{"type":"input_text"}]}`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, supportdesk.ExtractUserInput([]byte(tt.body)))
		})
	}
}
