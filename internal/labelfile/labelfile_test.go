package labelfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) Table {
	t.Helper()
	table, err := Parse(strings.NewReader(content))
	require.NoError(t, err)
	return table
}

func TestParse_EntryLine(t *testing.T) {
	table := parse(t, "Greeting:Hello world")

	require.Len(t, table, 1)
	assert.Equal(t, "Greeting", table["Greeting"].LabelID)
	assert.Equal(t, "Hello world", table["Greeting"].Text)
	assert.Empty(t, table["Greeting"].Description)
}

func TestParse_TextIsNotTrimmed(t *testing.T) {
	table := parse(t, "A:  padded text ")
	assert.Equal(t, "  padded text ", table["A"].Text)
}

func TestParse_EmptyText(t *testing.T) {
	table := parse(t, "A:")

	require.Contains(t, table, "A")
	assert.Equal(t, "", table["A"].Text)
}

func TestParse_LastOccurrenceWins(t *testing.T) {
	table := parse(t, "A:text1\nA:text2")

	require.Len(t, table, 1)
	assert.Equal(t, "text2", table["A"].Text)
}

func TestParse_RedeclarationDropsDescription(t *testing.T) {
	table := parse(t, "A:one\n;first description\nA:two")

	assert.Equal(t, "two", table["A"].Text)
	assert.Empty(t, table["A"].Description, "re-declared entry starts clean")
}

func TestParse_DescriptionAdjacency(t *testing.T) {
	// The blank line breaks adjacency before ";orphan" could attach to A;
	// ";orphan" immediately follows B, so it attaches to B.
	table := parse(t, "A:hello\n;desc\n\nB:world\n;orphan")

	assert.Equal(t, "desc", table["A"].Description)
	assert.Equal(t, "orphan", table["B"].Description)
}

func TestParse_BlankLineBreaksAdjacency(t *testing.T) {
	table := parse(t, "A:hello\n\n;late comment")

	assert.Empty(t, table["A"].Description)
	assert.Len(t, table, 1)
}

func TestParse_RepeatedDescriptionOverwrites(t *testing.T) {
	table := parse(t, "A:hello\n;first\n;second")

	assert.Equal(t, "second", table["A"].Description)
}

func TestParse_UnrecognizedLineClearsCurrentEntry(t *testing.T) {
	table := parse(t, "A:hello\nthis line matches nothing!\n;stray")

	require.Len(t, table, 1)
	assert.Empty(t, table["A"].Description, "junk line must break adjacency")
}

func TestParse_LeadingDescriptionIsIgnored(t *testing.T) {
	table := parse(t, ";header comment\nA:hello")

	require.Len(t, table, 1)
	assert.Empty(t, table["A"].Description)
}

func TestParse_WhitespaceOnlyLineBreaksAdjacency(t *testing.T) {
	// "   " is neither blank nor a recognized line, so it clears the
	// current entry just like a blank line would.
	table := parse(t, "A:hello\n   \n;stray")

	assert.Empty(t, table["A"].Description)
}

func TestParse_CRLFInput(t *testing.T) {
	lf := parse(t, "A:hello\n;desc\n\nB:world\n")
	crlf := parse(t, "A:hello\r\n;desc\r\n\r\nB:world\r\n")

	assert.Equal(t, lf, crlf)
}

func TestParse_Deterministic(t *testing.T) {
	content := "A:hello\n;desc\nB:\nC:third entry\nA:overridden\n"

	first := parse(t, content)
	second := parse(t, content)

	assert.Equal(t, first, second)
}

func TestParse_Empty(t *testing.T) {
	table := parse(t, "")
	assert.Empty(t, table)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SYS.en-US.label.txt")
	require.NoError(t, os.WriteFile(path, []byte("Greeting:Hello\n;welcome text\n"), 0o644))

	table, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Hello", table["Greeting"].Text)
	assert.Equal(t, "welcome text", table["Greeting"].Description)
}

func TestParseFile_MissingFile(t *testing.T) {
	table, err := ParseFile(filepath.Join(t.TempDir(), "absent.en-US.label.txt"))

	require.Error(t, err)
	assert.NotNil(t, table)
	assert.Empty(t, table, "read failure degrades to an empty table")
}
