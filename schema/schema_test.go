package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/ucfbkit/ucfb"
)

func TestDefault(t *testing.T) {
	s := Default()
	for _, tag := range []string{"font", "modl", "segm", "shdw", "scr_", "tern"} {
		require.True(t, s.IsParent(ucfb.MN(tag)), tag)
	}
	require.False(t, s.IsParent(ucfb.MN("NAME")))
	require.False(t, s.IsParent(ucfb.MN("INFO")))
	require.Equal(t, 256, s.EditorLimits().MaxDepth)
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte("parents: [MTRL, lvl_]\n"))
	require.NoError(t, err)
	require.True(t, s.Classifier()(ucfb.MN("MTRL")))
	require.True(t, s.IsParent(ucfb.MN("lvl_")))
	require.False(t, s.IsParent(ucfb.MN("modl")))
	require.Zero(t, s.EditorLimits().MaxDepth)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"short tag", "parents: [abc]", `tag "abc" must be 4 bytes`},
		{"bad yaml", "parents: [", "parse schema"},
		{"negative depth", "limits: {max_depth: -1}", "must not be negative"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	b, err := Default().Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default().Parents, s.Parents)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
