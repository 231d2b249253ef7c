package labelcache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"label-resolver/internal/labelfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrParseCachesOnMiss(t *testing.T) {
	var calls atomic.Int32
	c := New()
	c.parse = func(path string) (labelfile.Table, error) {
		calls.Add(1)
		return labelfile.Table{"A": {LabelID: "A", Text: "hello"}}, nil
	}

	first := c.GetOrParse("/labels/SYS.en-US.label.txt")
	second := c.GetOrParse("/labels/SYS.en-US.label.txt")

	assert.Equal(t, "hello", first["A"].Text)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())
}

func TestGetOrParseKeysOnPath(t *testing.T) {
	c := New()
	c.parse = func(path string) (labelfile.Table, error) {
		return labelfile.Table{"A": {LabelID: "A", Text: path}}, nil
	}

	p1 := c.GetOrParse("/p1/SYS.en-US.label.txt")
	p2 := c.GetOrParse("/p2/SYS.en-US.label.txt")

	assert.NotEqual(t, p1["A"].Text, p2["A"].Text)
	assert.Equal(t, 2, c.Len())
}

func TestGetOrParseFirstInsertWins(t *testing.T) {
	c := New()
	c.parse = func(path string) (labelfile.Table, error) {
		return labelfile.Table{"A": {LabelID: "A", Text: "first"}}, nil
	}
	c.GetOrParse("/labels/SYS.en-US.label.txt")

	// The entry is already resident, so a changed parse result is ignored
	// until Clear.
	c.parse = func(path string) (labelfile.Table, error) {
		return labelfile.Table{"A": {LabelID: "A", Text: "second"}}, nil
	}
	got := c.GetOrParse("/labels/SYS.en-US.label.txt")
	assert.Equal(t, "first", got["A"].Text)
}

func TestGetOrParseConcurrentMissesAgree(t *testing.T) {
	const racers = 8

	var (
		gate  sync.WaitGroup
		seq   atomic.Int32
		start = make(chan struct{})
	)
	gate.Add(racers)

	c := New()
	c.parse = func(path string) (labelfile.Table, error) {
		// Hold every racer at the parse step so all of them miss.
		gate.Done()
		<-start
		n := seq.Add(1)
		return labelfile.Table{"A": {LabelID: "A", Text: fmt.Sprintf("parse-%d", n)}}, nil
	}

	results := make([]labelfile.Table, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.GetOrParse("/labels/SYS.en-US.label.txt")
		}(i)
	}
	gate.Wait()
	close(start)
	wg.Wait()

	winner := c.GetOrParse("/labels/SYS.en-US.label.txt")
	for i := 0; i < racers; i++ {
		assert.Equal(t, winner, results[i], "racer %d observed a different table", i)
	}
	assert.Equal(t, 1, c.Len())
}

func TestGetOrParseDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int32
	c := New()
	c.parse = func(path string) (labelfile.Table, error) {
		if calls.Add(1) == 1 {
			return labelfile.Table{}, errors.New("open: no such file")
		}
		return labelfile.Table{"A": {LabelID: "A", Text: "recovered"}}, nil
	}

	first := c.GetOrParse("/labels/SYS.en-US.label.txt")
	assert.Empty(t, first)
	assert.Equal(t, 0, c.Len())

	// No Clear in between: the failure was not memoized.
	second := c.GetOrParse("/labels/SYS.en-US.label.txt")
	assert.Equal(t, "recovered", second["A"].Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClearForcesReparse(t *testing.T) {
	var calls atomic.Int32
	c := New()
	c.parse = func(path string) (labelfile.Table, error) {
		calls.Add(1)
		return labelfile.Table{"A": {LabelID: "A", Text: fmt.Sprintf("v%d", calls.Load())}}, nil
	}

	assert.Equal(t, "v1", c.GetOrParse("/labels/SYS.en-US.label.txt")["A"].Text)
	assert.Equal(t, "v1", c.GetOrParse("/labels/SYS.en-US.label.txt")["A"].Text)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, "v2", c.GetOrParse("/labels/SYS.en-US.label.txt")["A"].Text)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetOrParseReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SYS.en-US.label.txt")
	require.NoError(t, os.WriteFile(path, []byte("Greeting:Hello\n;Shown on startup\n"), 0o644))

	c := New()
	table := c.GetOrParse(path)

	require.Contains(t, table, "Greeting")
	assert.Equal(t, "Hello", table["Greeting"].Text)
	assert.Equal(t, "Shown on startup", table["Greeting"].Description)

	// Edits are invisible until an explicit Clear.
	require.NoError(t, os.WriteFile(path, []byte("Greeting:Bonjour\n"), 0o644))
	assert.Equal(t, "Hello", c.GetOrParse(path)["Greeting"].Text)

	c.Clear()
	assert.Equal(t, "Bonjour", c.GetOrParse(path)["Greeting"].Text)
}
