package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

const maxLine = 1 << 20

// scan calls fn for every non-empty line of the log, numbering from 1.
func scan(path string, fn func(n int, line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	n := 0
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		n++
		if err := fn(n, line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}
	return nil
}

// Verify reads the audit log and checks the hash chain integrity. It
// returns the number of entries checked, and an error describing the first
// violation if the chain is broken.
func Verify(path string) (int, error) {
	expectedPrev := genesisHash()
	var prevSeq uint64
	count := 0

	err := scan(path, func(n int, line []byte) error {
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return fmt.Errorf("line %d: invalid JSON: %w", n, err)
		}
		if entry.Seq != prevSeq+1 {
			return fmt.Errorf("line %d: sequence gap: expected %d, got %d", n, prevSeq+1, entry.Seq)
		}
		if entry.PrevHash != expectedPrev {
			return fmt.Errorf("line %d: prev_hash mismatch: expected %s, got %s", n, short(expectedPrev), short(entry.PrevHash))
		}
		if computed := computeHash(entry); entry.Hash != computed {
			return fmt.Errorf("line %d: hash mismatch: expected %s, got %s", n, short(computed), short(entry.Hash))
		}
		expectedPrev = entry.Hash
		prevSeq = entry.Seq
		count++
		return nil
	})
	return count, err
}

// Tail returns the last n entries from the audit log, oldest first.
// Unparseable lines are skipped.
func Tail(path string, n int) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}
	var ring []Entry
	err := scan(path, func(_ int, line []byte) error {
		var entry Entry
		if json.Unmarshal(line, &entry) != nil {
			return nil
		}
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, entry)
		return nil
	})
	return ring, err
}

// ForRun returns every entry logged under runID, oldest first.
func ForRun(path, runID string) ([]Entry, error) {
	var entries []Entry
	err := scan(path, func(_ int, line []byte) error {
		var entry Entry
		if json.Unmarshal(line, &entry) == nil && entry.RunID == runID {
			entries = append(entries, entry)
		}
		return nil
	})
	return entries, err
}

func short(hash string) string {
	if len(hash) > 16 {
		return hash[:16] + "..."
	}
	return hash
}
