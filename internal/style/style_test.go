package style

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alienxp03/arena/internal/core"
)

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()
	require.Len(t, styles, 2)

	for _, s := range styles {
		assert.NotEmpty(t, s.OpeningPrompt, "style %s has empty OpeningPrompt", s.ID)
		assert.NotEmpty(t, s.RebuttalPrompt, "style %s has empty RebuttalPrompt", s.ID)
		assert.NotEmpty(t, s.SummaryPrompt, "style %s has empty SummaryPrompt", s.ID)

		_, err := NewBuilder(&s, 0, 0)
		assert.NoError(t, err, "style %s does not parse", s.ID)
	}
}

func TestGet(t *testing.T) {
	t.Run("ExistingStyle", func(t *testing.T) {
		s := Get("formal")
		require.NotNil(t, s)
		assert.Equal(t, "formal", s.ID)
	})

	t.Run("NonexistentStyle", func(t *testing.T) {
		assert.Nil(t, Get("nonexistent"))
	})

	t.Run("Default", func(t *testing.T) {
		require.NotNil(t, Default())
		assert.Equal(t, "classic", Default().ID)
		assert.True(t, Valid("classic"))
		assert.Equal(t, []string{"classic", "formal"}, List())
	})
}

func TestLookupPrefersCustom(t *testing.T) {
	custom := []Style{{ID: "classic", Name: "Overridden"}, {ID: "mine", Name: "Mine"}}

	assert.Equal(t, "Overridden", Lookup("classic", custom).Name)
	assert.Equal(t, "Mine", Lookup("mine", custom).Name)
	assert.Equal(t, "Formal", Lookup("formal", custom).Name)
	assert.Nil(t, Lookup("missing", custom))
}

func TestClassicPrompts(t *testing.T) {
	b, err := NewBuilder(Default(), 0, 0)
	require.NoError(t, err)

	req := core.DebateRequest{
		Topic:          "remote work",
		AffirmativeDoc: "AFF-DOC",
		NegativeDoc:    "NEG-DOC",
		Rounds:         3,
	}

	t.Run("OpeningAffirmative", func(t *testing.T) {
		got, err := b.Turn(0, core.SideAffirmative, req)
		require.NoError(t, err)
		assert.Equal(t, "You are arguing FOR remote work. Refer to the following background document: AFF-DOC. Be concise (within 100 words).", got)
	})

	t.Run("OpeningNegative", func(t *testing.T) {
		got, err := b.Turn(0, core.SideNegative, req)
		require.NoError(t, err)
		assert.Equal(t, "You are arguing AGAINST remote work. Refer to the following background document: NEG-DOC. Be concise (within 100 words).", got)
	})

	t.Run("RebuttalAffirmative", func(t *testing.T) {
		got, err := b.Turn(1, core.SideAffirmative, req)
		require.NoError(t, err)
		assert.Equal(t, "Review the full debate history and respond to the latest argument from the Negative. Refer to AFF-DOC and attack points that might support the negative side. Continue arguing FOR remote work. Be concise (within 100 words).", got)
	})

	t.Run("RebuttalNegative", func(t *testing.T) {
		got, err := b.Turn(2, core.SideNegative, req)
		require.NoError(t, err)
		assert.Contains(t, got, "the latest argument from the Affirmative")
		assert.Contains(t, got, "NEG-DOC")
		assert.NotContains(t, got, "AFF-DOC")
		assert.Contains(t, got, "Continue arguing AGAINST remote work")
	})

	t.Run("Summary", func(t *testing.T) {
		got, err := b.Summary(req)
		require.NoError(t, err)
		assert.Equal(t, "Summarize the key points from both sides of this debate about remote work, and provide a balanced conclusion. Be concise (within 200 words).", got)
	})
}

func TestFramingSwitch(t *testing.T) {
	for _, s := range DefaultStyles() {
		b, err := NewBuilder(&s, 0, 0)
		require.NoError(t, err)

		req := core.NewDebateRequest("X is good", "", "")
		for _, side := range []core.Side{core.SideAffirmative, core.SideNegative} {
			opening, err := b.Turn(0, side, req)
			require.NoError(t, err)
			assert.NotContains(t, opening, "the latest argument from", "%s/%s opening", s.ID, side)

			for round := 1; round < 4; round++ {
				rebuttal, err := b.Turn(round, side, req)
				require.NoError(t, err)
				assert.Contains(t, rebuttal, "the latest argument from", "%s/%s round %d", s.ID, side, round)
			}
		}
	}
}

func TestCustomWordLimits(t *testing.T) {
	b, err := NewBuilder(Default(), 50, 150)
	require.NoError(t, err)

	req := core.NewDebateRequest("X", "", "")
	turn, err := b.Turn(0, core.SideAffirmative, req)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(turn, "(within 50 words)."))

	summary, err := b.Summary(req)
	require.NoError(t, err)
	assert.Contains(t, summary, "within 150 words")
}

func TestNewBuilderErrors(t *testing.T) {
	_, err := NewBuilder(nil, 0, 0)
	assert.Error(t, err)

	_, err = NewBuilder(&Style{ID: "broken", OpeningPrompt: "{{.Topic", RebuttalPrompt: "x", SummaryPrompt: "y"}, 0, 0)
	assert.Error(t, err)

	_, err = NewBuilder(&Style{ID: "empty", OpeningPrompt: "x", RebuttalPrompt: "", SummaryPrompt: "y"}, 0, 0)
	assert.Error(t, err)

	b, err := NewBuilder(&Style{ID: "unknown-field", OpeningPrompt: "{{.Nope}}", RebuttalPrompt: "x", SummaryPrompt: "y"}, 0, 0)
	require.NoError(t, err)
	_, err = b.Turn(0, core.SideAffirmative, core.NewDebateRequest("X", "", ""))
	assert.Error(t, err)

	_, err = b.Turn(0, core.Side("judge"), core.NewDebateRequest("X", "", ""))
	assert.Error(t, err)
}
