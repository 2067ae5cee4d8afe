package search

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decoderd/internal/feature"
)

const testLexicon = `# toy German-English lexicon
das ||| the ||| tm=-0.5
das ||| that ||| tm=-1.0
haus ||| house ||| tm=-0.2
haus ||| home ||| tm=-0.9

ist ||| is ||| tm=-0.1
klein ||| small ||| tm=-0.3 lex=-1
ja ||| ||| tm=0
hausboot ||| house boat
`

func TestParseLexicon(t *testing.T) {
	lex, err := ParseLexicon(strings.NewReader(testLexicon))
	require.NoError(t, err)
	assert.Equal(t, 8, lex.Len())

	got := lex.Lookup("das")
	want := []Entry{
		{Target: []string{"the"}, Features: feature.Vector{"tm": -0.5}},
		{Target: []string{"that"}, Features: feature.Vector{"tm": -1.0}},
	}
	assert.Empty(t, cmp.Diff(want, got), "das entries (-want +got)")
	assert.Equal(t, feature.Vector{"tm": -0.3, "lex": -1}, lex.Lookup("klein")[0].Features)
	assert.Empty(t, lex.Lookup("ja")[0].Target)
	assert.Equal(t, []string{"house", "boat"}, lex.Lookup("hausboot")[0].Target)
	assert.Nil(t, lex.Lookup("hund"))
}

func TestParseLexiconErrors(t *testing.T) {
	cases := map[string]string{
		"fields":      "das the\n",
		"too many":    "a ||| b ||| c=1 ||| d\n",
		"multiword":   "das haus ||| the house\n",
		"bad feature": "das ||| the ||| tm\n",
		"bad value":   "das ||| the ||| tm=x\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLexicon(strings.NewReader("ok ||| fine\n" + in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestLoadLexicon(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lex.txt")
	require.NoError(t, os.WriteFile(p, []byte(testLexicon), 0o644))
	lex, err := LoadLexicon(p)
	require.NoError(t, err)
	assert.Equal(t, 8, lex.Len())

	_, err = LoadLexicon(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
