package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

func testPair(instruction, output string) *domain.QAPair {
	return &domain.QAPair{
		Instruction: instruction,
		Output:      output,
		SourceFile:  "doc.txt",
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	trimmed := strings.TrimSuffix(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestNewWriter_RequiresPath(t *testing.T) {
	_, err := NewWriter("", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")

	writer, err := NewWriter(path, false)
	require.NoError(t, err)
	defer writer.Close()

	ctx := context.Background()
	require.NoError(t, writer.Append(ctx, testPair("What is the capital of France?", "Paris.")))
	require.NoError(t, writer.Append(ctx, testPair("Second question?", "Second answer.")))

	assert.Equal(t, 2, writer.Written())

	lines := readLines(t, path)
	require.Len(t, lines, 2)

	// Key order is part of the record shape.
	assert.Equal(t,
		`{"instruction":"What is the capital of France?","input":"","output":"Paris.","source_file":"doc.txt"}`,
		lines[0])

	var pair domain.QAPair
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &pair))
	assert.Equal(t, "Second question?", pair.Instruction)
	assert.Equal(t, "Second answer.", pair.Output)
	assert.Equal(t, "doc.txt", pair.SourceFile)
}

func TestWriter_AppendAccumulatesAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	ctx := context.Background()

	first, err := NewWriter(path, false)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, testPair("Q1?", "A1.")))
	require.NoError(t, first.Append(ctx, testPair("Q2?", "A2.")))
	require.NoError(t, first.Close())

	second, err := NewWriter(path, false)
	require.NoError(t, err)
	require.NoError(t, second.Append(ctx, testPair("Q3?", "A3.")))
	require.NoError(t, second.Close())

	lines := readLines(t, path)
	assert.Len(t, lines, 3)

	// The reopened writer only counts its own appends.
	assert.Equal(t, 1, second.Written())
}

func TestWriter_OverwriteTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	ctx := context.Background()

	first, err := NewWriter(path, false)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, testPair("Old?", "Old.")))
	require.NoError(t, first.Close())

	second, err := NewWriter(path, true)
	require.NoError(t, err)
	require.NoError(t, second.Append(ctx, testPair("New?", "New.")))
	require.NoError(t, second.Close())

	lines := readLines(t, path)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "New?")
}

func TestWriter_RejectsInvalidPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")

	writer, err := NewWriter(path, false)
	require.NoError(t, err)
	defer writer.Close()

	ctx := context.Background()

	err = writer.Append(ctx, &domain.QAPair{Instruction: "Question without answer?"})
	require.Error(t, err)

	err = writer.Append(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Equal(t, 0, writer.Written())
	assert.Empty(t, readLines(t, path))
}

func TestWriter_AppendAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")

	writer, err := NewWriter(path, false)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())

	err = writer.Append(context.Background(), testPair("Q?", "A."))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOutputWrite)
}

func TestWriter_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")

	writer, err := NewWriter(path, false)
	require.NoError(t, err)
	defer writer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = writer.Append(ctx, testPair("Q?", "A."))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, writer.Written())
}

func TestWriter_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.jsonl")

	writer, err := NewWriter(path, false)
	require.NoError(t, err)
	defer writer.Close()

	const workers = 8
	const perWorker = 25

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				pair := testPair(
					fmt.Sprintf("Question %d-%d?", worker, j),
					fmt.Sprintf("Answer %d-%d.", worker, j),
				)
				assert.NoError(t, writer.Append(context.Background(), pair))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers*perWorker, writer.Written())

	lines := readLines(t, path)
	require.Len(t, lines, workers*perWorker)
	for _, line := range lines {
		var pair domain.QAPair
		require.NoError(t, json.Unmarshal([]byte(line), &pair), "corrupted line: %s", line)
	}
}

func TestFactory_CreateMakesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "output", "dataset.jsonl")

	factory := NewFactory()
	writer, err := factory.Create(path, false)
	require.NoError(t, err)
	defer writer.Close()

	assert.Equal(t, path, writer.Path())
	require.NoError(t, writer.Append(context.Background(), testPair("Q?", "A.")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
