// Package labelfile parses label resource files.
//
// A label file is a per-language plain-text resource holding every entry for
// one file id. The grammar is line oriented:
//
//	Greeting:Hello world
//	;Shown on the start page
//
//	Farewell:Goodbye
//
// A "LabelId:Text" line starts an entry; an immediately adjacent ";Comment"
// line sets that entry's description. A blank line breaks adjacency, so a
// description can never attach across one. Duplicate label ids keep the last
// occurrence. Unrecognized lines are skipped and also break adjacency.
package labelfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
)

var (
	entryPattern       = regexp.MustCompile(`^([A-Za-z0-9_]+):(.*)$`)
	descriptionPattern = regexp.MustCompile(`^;(.*)$`)
)

// Entry is one label in a label resource file. Description is empty when no
// comment line was attached to the entry.
type Entry struct {
	LabelID     string
	Text        string
	Description string
}

// Table maps label id to entry for exactly one resolved label file. Tables
// handed out by the cache are shared; callers must treat them as read-only.
type Table map[string]Entry

// Parse reads the label grammar from r. The table is fully determined by the
// input bytes: parsing the same content twice yields equal tables. A read
// failure degrades to an empty table plus the error.
func Parse(r io.Reader) (Table, error) {
	table := make(Table)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	// Label id that a ;description line would attach to. Cleared by blank
	// and unrecognized lines so descriptions only bind by direct adjacency.
	current := ""

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			current = ""
			continue
		}

		if m := entryPattern.FindStringSubmatch(line); m != nil {
			table[m[1]] = Entry{LabelID: m[1], Text: m[2]}
			current = m[1]
			continue
		}

		if m := descriptionPattern.FindStringSubmatch(line); m != nil {
			if current != "" {
				e := table[current]
				e.Description = m[1]
				table[current] = e
			}
			continue
		}

		current = ""
	}

	if err := scanner.Err(); err != nil {
		return Table{}, fmt.Errorf("scan label file: %w", err)
	}

	return table, nil
}

// ParseFile reads and parses the label file at path.
func ParseFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open label file: %w", err)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return Table{}, fmt.Errorf("read label file %s: %w", path, err)
	}
	return table, nil
}
