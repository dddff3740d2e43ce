package docs

import (
	"bufio"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// topicsInReadme extracts the "* topic: description" lines of readme.md.
func topicsInReadme(t *testing.T) []string {
	t.Helper()
	file, err := os.Open("readme.md")
	require.NoError(t, err)
	defer file.Close()

	var topics []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topics = append(topics, strings.TrimSpace(matches[1]))
		}
	}
	require.NoError(t, scanner.Err())
	return topics
}

func TestTopics(t *testing.T) {
	// The readme lists exactly the embedded topics.
	listed := topicsInReadme(t)
	all, err := AllTopics()
	require.NoError(t, err)
	assert.ElementsMatch(t, all, listed)

	for _, topic := range append(all, Readme) {
		t.Run(topic, func(t *testing.T) {
			content, err := GetTopic(topic)
			require.NoError(t, err)
			assert.NotEmpty(t, content)

			title, err := Title(topic)
			require.NoError(t, err)
			assert.NotEmpty(t, title)
		})
	}
}

func TestGetTopics(t *testing.T) {
	all, err := GetTopics("*")
	require.NoError(t, err)
	for _, title := range []string{"# Interactive session", "# Configuration", "# Storage", "# Exchange rates"} {
		assert.Contains(t, all, title)
	}
	assert.NotContains(t, all, "Use `atr topic")

	_, err = GetTopics("shell", "nope")
	assert.Error(t, err)
}

func TestTitle(t *testing.T) {
	title, err := Title("rates")
	require.NoError(t, err)
	assert.Equal(t, "Exchange rates", title)
}
