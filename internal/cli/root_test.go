package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandStructure(t *testing.T) {
	root := NewRootCmd()

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "analyze")
	assert.Contains(t, names, "deals")
	assert.Contains(t, names, "version")
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
}

func TestAnalyzeRejectsUnknownSource(t *testing.T) {
	opts := analyzeOptions{source: "zillow"}
	_, err := fetchProperties(context.Background(), nil, opts, newLogger())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}
