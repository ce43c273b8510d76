package overrides_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/wikitypes/overrides"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	tbl := overrides.Default()
	require.NotNil(t, tbl)

	assert.Equal(t, "EntityFuncs", tbl.ContextAlias("Entity"))
	assert.Equal(t, "GamemodeHooks", tbl.ContextAlias("GM"))
	assert.Equal(t, "Player", tbl.ContextAlias("Player"))
	assert.Equal(t, "IColor", tbl.StructureAlias("Color"))
	assert.Equal(t, "PLAYER_ANIM", tbl.EnumAlias("PLAYER"))
	assert.Equal(t, "_ENTITY", tbl.SelfType("EntityHooks"))
	assert.Equal(t, "Player", tbl.SelfType("Player"))
	assert.Equal(t, []string{"Entity"}, tbl.Extends("PlayerFuncs"))
	assert.Nil(t, tbl.Extends("Player"))
	assert.Equal(t, overrides.DefaultWikiURL, tbl.WikiURL())
	assert.True(t, tbl.SkipParse("wikiutils"))
	assert.True(t, tbl.SkipGenerate("Global/Error"))
	assert.False(t, tbl.SkipGenerate("Global/Print"))

	typings := tbl.Typings()
	require.NotEmpty(t, typings)
	assert.Equal(t, "declare const SERVER: boolean", typings[0])
	assert.Contains(t, typings, "type UnknownFunc = (this: void, ...args: any[]) => unknown")
}

func TestLookup(t *testing.T) {
	t.Parallel()

	tbl, err := overrides.Parse([]byte(`
funcs:
  concommand/Add:
    prefix: "<T>"
    params:
      flags: {optional: true}
      callback:
        args:
          args: {type: 'string[]'}
    returns:
      - {}
      - {type: boolean, args: {ok: {name: success}}}
`))
	require.NoError(t, err)

	tcs := map[string]struct {
		key    overrides.Key
		want   overrides.Override
		wantOK bool
	}{
		"member": {
			key:    overrides.MemberKey("concommand", "Add"),
			want:   overrides.Override{Prefix: "<T>"},
			wantOK: true,
		},
		"param": {
			key:    overrides.ParamKey("concommand", "Add", "flags"),
			want:   overrides.Override{Optional: true},
			wantOK: true,
		},
		"nested param": {
			key:    overrides.ParamKey("concommand", "Add", "callback").Field("args"),
			want:   overrides.Override{Type: "string[]"},
			wantOK: true,
		},
		"missing nested param": {
			key: overrides.ParamKey("concommand", "Add", "flags").Field("args"),
		},
		"empty return position": {
			key:    overrides.ReturnKey("concommand", "Add", 0),
			wantOK: true,
		},
		"return": {
			key:    overrides.ReturnKey("concommand", "Add", 1).Field("ok"),
			want:   overrides.Override{Name: "success"},
			wantOK: true,
		},
		"return out of range": {
			key: overrides.ReturnKey("concommand", "Add", 2),
		},
		"unknown param": {
			key: overrides.ParamKey("concommand", "Add", "name"),
		},
		"unknown member": {
			key: overrides.MemberKey("concommand", "Remove"),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, ok := tbl.Lookup(tc.key)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNilTable(t *testing.T) {
	t.Parallel()

	var tbl *overrides.Table

	_, ok := tbl.Lookup(overrides.MemberKey("a", "b"))
	assert.False(t, ok)
	assert.Equal(t, "Entity", tbl.ContextAlias("Entity"))
	assert.Equal(t, overrides.DefaultWikiURL, tbl.WikiURL())
	assert.False(t, tbl.SkipParse("wikiutils"))
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tcs := map[string]string{
		"unknown key":       "global:\n  contexts: {}\n",
		"unknown field":     "funcs:\n  a/b:\n    params:\n      x: {optinal: true}\n",
		"bad func key":      "funcs:\n  NoSlash:\n    prefix: x\n",
		"self extend":       "global:\n  extend:\n    Panel: [Panel]\n",
		"wrong type":        "global:\n  typings: nope\n",
		"duplicate mapping": "global:\n  enum:\n    A: B\n    A: C\n",
	}

	for name, input := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := overrides.Parse([]byte(input))
			require.ErrorIs(t, err, overrides.ErrInvalidOverrides)
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	t.Parallel()

	_, err := overrides.Parse([]byte("funcs:\n  NoSlash: {}\n  a/b: {}\n"))
	require.ErrorIs(t, err, overrides.ErrInvalidOverrides)

	assert.Contains(t, err.Error(), `funcs key "NoSlash"`)
	assert.NotContains(t, err.Error(), `"a/b"`)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")

	err := os.WriteFile(path, []byte("global:\n  wikiURL: https://example.com/wiki/\n"), 0o600)
	require.NoError(t, err)

	tbl, err := overrides.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/wiki/", tbl.WikiURL())

	_, err = overrides.Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, overrides.ErrInvalidOverrides)
}
