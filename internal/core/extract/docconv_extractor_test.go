package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitPages(t *testing.T) {
	pages := SplitPages("first page\ftext on page two\f\f  \fthird")
	require.Len(t, pages, 3)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "first page", pages[0].Text)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, 3, pages[2].Number)
	assert.Equal(t, "third", pages[2].Text)

	assert.Empty(t, SplitPages(""))
	assert.Empty(t, SplitPages("\f\f"))
}

func TestRebuildPagesGroupsParagraphs(t *testing.T) {
	para := strings.Repeat("word ", 100)
	body := strings.Join([]string{para, para, para, para, para}, "\n\n")

	pages := RebuildPages(body, 200)
	require.Len(t, pages, 3)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, 2, pages[1].Number)
	assert.Equal(t, 3, pages[2].Number)

	// Paragraphs never split mid-way.
	for _, p := range pages[:2] {
		assert.Len(t, strings.Fields(p.Text), 200)
	}
	assert.Len(t, strings.Fields(pages[2].Text), 100)
}

func TestRebuildPagesEmptyBody(t *testing.T) {
	assert.Empty(t, RebuildPages("", 500))
	assert.Empty(t, RebuildPages("\n\n\n\n", 500))
}
