package services

import (
	"context"
	"strings"
	"testing"

	"photoshare-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"plain", "sunset", 100, "sunset"},
		{"ampersand and quotes", `Tom & Jerry's "trip"`, 100, `Tom & Jerry's "trip"`},
		{"less-than text", "me <3 you", 100, "me <3 you"},
		{"tags stripped", "<b>bold</b> <script>alert(1)</script>move", 100, "bold move"},
		{"typed entity kept literally", "&lt;tag&gt;", 100, "&lt;tag&gt;"},
		{"whitespace trimmed", "  padded \n", 100, "padded"},
		{"nul removed", "a\x00b", 100, "ab"},
		{"truncated after unescaping", "a&b&c", 3, "a&b"},
		{"truncated by runes", "ääää", 2, "ää"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeText(tt.input, tt.maxLen))
		})
	}
}

func TestSanitizedTextRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.store.CreateUser(t, "anna")
	b := env.store.CreateUser(t, "boris")

	desc := `Tom & Jerry's "trip" <3`
	view, err := env.groups.Create(ctx, a.ID, "Cats & Dogs", &desc)
	require.NoError(t, err)
	assert.Equal(t, "Cats & Dogs", view.Name)
	require.NotNil(t, view.Description)
	assert.Equal(t, desc, *view.Description)

	_, err = env.groups.AddMember(ctx, a.ID, view.ID, b.ID)
	require.NoError(t, err)

	notes := env.notificationsOf(t, b.ID)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationGroupInvite, notes[0].Type)
	assert.Equal(t, "anna added you to Cats & Dogs", notes[0].Content)
	assert.False(t, strings.Contains(notes[0].Content, "&amp;"))
}
