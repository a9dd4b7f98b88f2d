package parser

import (
	"encoding/json"
	"testing"

	"github.com/raphaelgruber/contentpilot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContent() models.StructuredContent {
	return models.StructuredContent{
		Headline:    "Título",
		Description: "Desc",
		CTA:         "Compre já",
		Hashtags:    "#a #b",
		Platform:    models.PlatformInstagram,
	}
}

func TestTryParseStructured_RoundTrip(t *testing.T) {
	samples := []models.StructuredContent{sampleContent()}
	for _, p := range models.Platforms() {
		c := sampleContent()
		c.Platform = p
		c.Description = "Linha 1\nLinha 2 com \"aspas\" e emoji 🚀"
		samples = append(samples, c)
	}

	wrappers := []struct {
		name string
		wrap func(string) string
	}{
		{"bare", func(s string) string { return s }},
		{"json fence", func(s string) string { return "```json\n" + s + "\n```" }},
		{"bare fence", func(s string) string { return "```\n" + s + "\n```" }},
		{"spaced json fence", func(s string) string { return "``` json\n" + s + "\n```" }},
		{"leading fence only", func(s string) string { return "```json\n" + s }},
		{"trailing fence only", func(s string) string { return s + "\n```" }},
		{"single line fence", func(s string) string { return "```json" + s + "```" }},
		{"surrounding whitespace", func(s string) string { return "\n\n  " + s + "  \n" }},
	}

	for _, c := range samples {
		raw, err := json.Marshal(c)
		require.NoError(t, err)

		for _, w := range wrappers {
			t.Run(string(c.Platform)+"/"+w.name, func(t *testing.T) {
				got, ok := TryParseStructured(w.wrap(string(raw)))
				require.True(t, ok, "payload should parse")
				assert.Equal(t, c, got)
			})
		}
	}
}

func TestTryParseStructured_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
		{"plain text", "Desculpe, não posso ajudar."},
		{"truncated json", `{"headline":"Título","description":"Desc"`},
		{"json array", `[{"headline":"a"}]`},
		{"json null", `null`},
		{"json string", `"headline"`},
		{"missing headline", `{"description":"d","cta":"c","hashtags":"#h","platform":"instagram"}`},
		{"missing description", `{"headline":"h","cta":"c","hashtags":"#h","platform":"instagram"}`},
		{"missing cta", `{"headline":"h","description":"d","hashtags":"#h","platform":"instagram"}`},
		{"missing hashtags", `{"headline":"h","description":"d","cta":"c","platform":"instagram"}`},
		{"missing platform", `{"headline":"h","description":"d","cta":"c","hashtags":"#h"}`},
		{"empty headline", `{"headline":"","description":"d","cta":"c","hashtags":"#h","platform":"instagram"}`},
		{"unknown platform", `{"headline":"h","description":"d","cta":"c","hashtags":"#h","platform":"myspace"}`},
		{"platform label instead of key", `{"headline":"h","description":"d","cta":"c","hashtags":"#h","platform":"Instagram"}`},
		{"numeric field", `{"headline":1,"description":"d","cta":"c","hashtags":"#h","platform":"instagram"}`},
		{"hashtags as array", `{"headline":"h","description":"d","cta":"c","hashtags":["#a"],"platform":"instagram"}`},
		{"trailing prose", `{"headline":"h","description":"d","cta":"c","hashtags":"#h","platform":"instagram"} espero que ajude`},
		{"leading prose", "Aqui está:\n```json\n{\"headline\":\"h\"}\n```"},
		{"fence only", "```json\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				got, ok := TryParseStructured(tt.raw)
				assert.False(t, ok)
				assert.Equal(t, models.StructuredContent{}, got)
			})
		})
	}
}

func TestTryParseStructured_IgnoresUnknownFields(t *testing.T) {
	raw := `{"headline":"h","description":"d","cta":"c","hashtags":"#h","platform":"tiktok","tone":"fun"}`
	got, ok := TryParseStructured(raw)
	require.True(t, ok)
	assert.Equal(t, models.PlatformTikTok, got.Platform)
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"uppercase tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"space before tag", "``` json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"crlf", "```json\r\n{\"a\":1}\r\n```", `{"a":1}`},
		{"padded", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestFormatDisplay(t *testing.T) {
	got := FormatDisplay(sampleContent())
	want := "**Título**\n\nDesc\n\n👉 Compre já\n\n#a #b\n\n📱 Plataforma: Instagram"
	assert.Equal(t, want, got)
}

func TestFormatDisplay_Deterministic(t *testing.T) {
	c := sampleContent()
	c.Platform = models.PlatformLinkedIn
	assert.Equal(t, FormatDisplay(c), FormatDisplay(c))
	assert.Contains(t, FormatDisplay(c), "LinkedIn")
}
