package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			in:   `{"star_rating": 4}`,
			want: `{"star_rating": 4}`,
			ok:   true,
		},
		{
			name: "wrapped in prose",
			in:   `Sure! Here's the JSON: {"star_rating": 4.5, "strengths": ["Go"]} Hope that helps!`,
			want: `{"star_rating": 4.5, "strengths": ["Go"]}`,
			ok:   true,
		},
		{
			name: "markdown fence",
			in:   "```json\n{\"a\": {\"b\": 1}}\n```",
			want: `{"a": {"b": 1}}`,
			ok:   true,
		},
		{
			name: "braces inside strings",
			in:   `note {"q": "use } and { carefully", "n": 1} trailing }`,
			want: `{"q": "use } and { carefully", "n": 1}`,
			ok:   true,
		},
		{
			name: "escaped quote in string",
			in:   `{"q": "say \"hi\" {"}`,
			want: `{"q": "say \"hi\" {"}`,
			ok:   true,
		},
		{
			name: "skips invalid leading block",
			in:   `{not json} then {"ok": true}`,
			want: `{"ok": true}`,
			ok:   true,
		},
		{name: "no object", in: "plain text answer", ok: false},
		{name: "unbalanced", in: `{"a": 1`, ok: false},
		{name: "empty", in: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSONObjectRecommendationFromProse(t *testing.T) {
	in := "Sure! Here's the JSON: {\"star_rating\": 4.5, \"strengths\": [\"APIs\"], \"weaknesses\": [], \"recommended_tags\": [\"Expert\"]} Hope that helps!"
	got, ok := ExtractJSONObject(in)
	require.True(t, ok)
	assert.Equal(t, 4.5, gjson.Get(got, "star_rating").Float())
	assert.Equal(t, "Expert", gjson.Get(got, "recommended_tags.0").String())
}
