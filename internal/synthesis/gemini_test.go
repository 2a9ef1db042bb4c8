package synthesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToContentsMapsRoles(t *testing.T) {
	contents := toContents(Request{
		User: "What next?",
		History: []Turn{
			{Role: "user", Text: "Hi"},
			{Role: "model", Text: "Hello"},
			{Role: "assistant", Text: "Stray"},
		},
	})

	require.Len(t, contents, 4)
	roles := make([]string, len(contents))
	for i, c := range contents {
		roles[i] = c.Role
	}
	assert.Equal(t, []string{"user", "model", "user", "user"}, roles)
	assert.Equal(t, "What next?", contents[3].Parts[0].Text)
}

func TestToGenaiSchemaNests(t *testing.T) {
	s := toGenaiSchema(&Schema{
		Type:     TypeObject,
		Required: []string{"items"},
		Properties: map[string]*Schema{
			"items": {Type: TypeArray, Items: &Schema{Type: TypeString}},
		},
	})
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, genai.TypeArray, s.Properties["items"].Type)
	assert.Equal(t, genai.TypeString, s.Properties["items"].Items.Type)
}
