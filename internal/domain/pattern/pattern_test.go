package pattern_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ayudhinc/vfxvox-pipeline-utils/internal/domain/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, root string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(d)), 0755))
	}
}

func TestCompile_CapturesNamedGroups(t *testing.T) {
	m, err := pattern.Compile("seq_{sequence}/shot_{shot}/comp", map[string]string{
		"sequence": `\d{3}`,
		"shot":     `\d{3}`,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, m.Depth())
	assert.Equal(t, []string{"sequence", "shot"}, m.Names())

	caps, ok := m.Match("seq_010/shot_020/comp")
	require.True(t, ok)
	assert.Equal(t, "010", caps["sequence"])
	assert.Equal(t, "020", caps["shot"])

	_, ok = m.Match("seq_10/shot_020/comp")
	assert.False(t, ok)
	_, ok = m.Match("seq_010/shot_020/comp/extra")
	assert.False(t, ok, "match must be anchored")
}

func TestCompile_DefaultFragment(t *testing.T) {
	m, err := pattern.Compile("{show}/plates", nil)
	require.NoError(t, err)
	caps, ok := m.Match("myshow/plates")
	require.True(t, ok)
	assert.Equal(t, "myshow", caps["show"])
}

func TestCompile_QuotesLiteralText(t *testing.T) {
	m, err := pattern.Compile("v1.0/{name}", map[string]string{"name": `[a-z]+`})
	require.NoError(t, err)
	_, ok := m.Match("v1.0/comp")
	assert.True(t, ok)
	_, ok = m.Match("v1x0/comp")
	assert.False(t, ok, "dot in literal text must not act as a wildcard")
}

func TestCompile_RepeatedPlaceholderCapturesOnce(t *testing.T) {
	m, err := pattern.Compile("shot_{shot}/shot_{shot}_comp", map[string]string{"shot": `\d+`})
	require.NoError(t, err)
	assert.Equal(t, []string{"shot"}, m.Names())
	caps, ok := m.Match("shot_010/shot_010_comp")
	require.True(t, ok)
	assert.Equal(t, "010", caps["shot"])
}

func TestCompile_InvalidFragment(t *testing.T) {
	_, err := pattern.Compile("seq_{sequence}", map[string]string{"sequence": `[z-a]`})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{sequence}")
}

func TestCompile_EmptyTemplate(t *testing.T) {
	_, err := pattern.Compile("  ", nil)
	assert.Error(t, err)
}

func TestDepth(t *testing.T) {
	assert.Equal(t, 1, pattern.Depth("a"))
	assert.Equal(t, 3, pattern.Depth("/a/b/c/"))
	assert.Equal(t, 0, pattern.Depth(""))
	assert.Equal(t, 2, pattern.Depth("./a/b"))
}

func TestMatcher_Find(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "seq_010/shot_020/comp/v001", "seq_010/shot_030/lighting")

	m, err := pattern.Compile("seq_{sequence}/shot_{shot}/comp", map[string]string{
		"sequence": `\d{3}`,
		"shot":     `\d{3}`,
	})
	require.NoError(t, err)

	match, ok, err := m.Find(root)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "seq_010/shot_020/comp", match.Path)
	assert.Equal(t, "020", match.Captures["shot"])
}

func TestMatcher_Find_NoMatch(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "seq_010/shot_020/lighting", "seq_010/shot_020/comp_old/comp")

	m, err := pattern.Compile("seq_{sequence}/shot_{shot}/comp", nil)
	require.NoError(t, err)

	_, ok, err := m.Find(root)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatcher_Find_MissingRoot(t *testing.T) {
	m, err := pattern.Compile("{a}", nil)
	require.NoError(t, err)
	_, _, err = m.Find(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestMatcher_Find_NormalizesTemplate(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "seq_010/shot_020")

	for _, tmpl := range []string{
		"seq_{s}/shot_{h}",
		"./seq_{s}/shot_{h}",
		"seq_{s}/shot_{h}/",
		"/seq_{s}//shot_{h}",
	} {
		t.Run(tmpl, func(t *testing.T) {
			m, err := pattern.Compile(tmpl, nil)
			require.NoError(t, err)
			assert.Equal(t, 2, m.Depth())

			match, ok, err := m.Find(root)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "seq_010/shot_020", match.Path)
			assert.Equal(t, "020", match.Captures["h"])
		})
	}
}
