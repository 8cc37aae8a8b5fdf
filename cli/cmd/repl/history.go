package repl

import (
	"bufio"
	"os"
	"strings"
)

// baseHistory is the base name of the history file under the cache
// directory.
const baseHistory = "history"

// History is a line-oriented input history persisted to a file. Entries are
// stored newline-delimited; embedded newlines in multi-line definitions are
// escaped on write and restored on load.
type History struct {
	path    string
	entries []string
}

// NewHistory creates a History backed by the file at path. The file is not
// touched until Load or Write.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads all persisted entries. A missing history file is not an error.
func (h *History) Load() error {
	file, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		h.entries = append(h.entries, unescapeEntry(line))
	}

	return scanner.Err()
}

// Write appends an entry to the history and persists it.
func (h *History) Write(entry string) error {
	h.entries = append(h.entries, entry)

	file, err := os.OpenFile(
		h.path,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		0o600,
	)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(escapeEntry(entry) + "\n")

	return err
}

// Len returns the number of entries.
func (h *History) Len() int { return len(h.entries) }

// Get returns the i'th entry, oldest first.
func (h *History) Get(i int) (string, bool) {
	if i < 0 || i >= len(h.entries) {
		return "", false
	}

	return h.entries[i], true
}

func escapeEntry(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)

	return strings.ReplaceAll(s, "\n", `\n`)
}

func unescapeEntry(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])

			continue
		}

		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
			i++
		case '\\':
			b.WriteByte('\\')
			i++
		default:
			b.WriteByte(s[i])
		}
	}

	return b.String()
}
