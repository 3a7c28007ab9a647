package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jknoll/agentic-orchestration/internal/jobs"
)

func TestOutputName(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://www.acmestore.com/products/Trail-Runner_2", "acmestore-com-products-trail-runner_2"},
		{"http://shop.example/", "shop-example"},
		{"https://shop.example/p/ceramic%20mug.html", "shop-example-p-ceramic-mug-html"},
	}
	for _, tc := range cases {
		got, err := outputName(tc.url)
		require.NoError(t, err, tc.url)
		assert.Equal(t, tc.want, got, tc.url)
	}

	for _, bad := range []string{"", "shop.example/p", "ftp://shop.example/p", "https://"} {
		_, err := outputName(bad)
		assert.Error(t, err, bad)
	}
}

func TestOutputNameTruncates(t *testing.T) {
	long := "https://shop.example/" + string(bytes.Repeat([]byte("a-"), 100))
	got, err := outputName(long)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(got), maxDirName)
	assert.NotEqual(t, byte('-'), got[len(got)-1])
}

func TestConsoleStoreEchoesLogs(t *testing.T) {
	var buf bytes.Buffer
	store := &consoleStore{Store: jobs.NewMemoryStore(), out: &buf}
	id := store.Create("https://shop.example/p")
	store.AddLog(id, "TinyFish", "Reading page")

	job, ok := store.Get(id)
	require.True(t, ok)
	require.Len(t, job.Logs, 1)
	assert.Equal(t, "[TinyFish] Reading page\n", buf.String())
}
