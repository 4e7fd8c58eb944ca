package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInputPetstore(t *testing.T) {
	defer leaktest.Check(t)()
	f, err := os.Open(filepath.Join("testdata", "petstore.json"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	root, doc, err := loadInput(context.Background(), f)
	require.NoError(t, err)
	require.NotNil(t, root)

	// One breaking replace, one annotation replace, one added and
	// one removed path; the containers subsume their descendants.
	c := root.Counts()
	assert.Equal(t, 4, c.Total)
	assert.Equal(t, 2, c.Breaking)
	assert.Equal(t, 1, c.NonBreaking)
	assert.Equal(t, 1, c.Annotation)

	m, ok := doc.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, m, "info")
	assert.Contains(t, m, "paths")
}

func TestLoadInputRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"not json", "not an envelope"},
		{"no tree", `{"format":"json","document":{}}`},
		{"tree not an object", `{"format":"json","tree":[1,2,3]}`},
		{"truncated document", `{"format":"json","tree":{"id":""},"document":{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer leaktest.Check(t)()
			_, _, err := loadInput(context.Background(), strings.NewReader(tc.in))
			assert.Error(t, err)
		})
	}
}

func TestLoadInputWithoutDocument(t *testing.T) {
	defer leaktest.Check(t)()
	in := `{"format":"json","tree":{"id":"","children":[{"id":"a","tokens":[{"text":"a: 1","when":"both"}]}]}}`
	root, doc, err := loadInput(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.Nil(t, doc)
	require.NotNil(t, root)
	assert.Len(t, root.Children, 1)
}

func TestLoadInputForeignFormat(t *testing.T) {
	defer leaktest.Check(t)()
	in := `{"format":"toml","tree":{"id":""}}`
	root, _, err := loadInput(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	assert.NotNil(t, root)
}
