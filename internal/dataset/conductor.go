// Package dataset converts raw instruction corpora into the JSON layout the
// fine-tuning framework's prepare scripts consume.
package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Record is one instruction-tuning example in the target format.
type Record struct {
	Instruction string `json:"instruction"`
	Input       string `json:"input"`
	Output      string `json:"output"`
}

type promptCompletion struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// Convert reads a prompt/completion JSONL corpus and writes the records as an
// indented JSON array of instruction/input/output objects. Lines that do not
// carry both keys are skipped; surrounding noise on a line (log prefixes,
// trailing commas) is tolerated by slicing from the first '{' to the last '}'.
// Returns the number of converted records.
func Convert(r io.Reader, w io.Writer) (int, error) {
	sc := bufio.NewScanner(r)
	// some corpora carry very long completions
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var records []Record
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if !strings.Contains(line, "prompt") || !strings.Contains(line, "completion") {
			continue
		}
		start := strings.Index(line, "{")
		end := strings.LastIndex(line, "}")
		if start < 0 || end < start {
			continue
		}
		var pc promptCompletion
		if err := json.Unmarshal([]byte(line[start:end+1]), &pc); err != nil {
			return 0, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, Record{Instruction: pc.Prompt, Output: pc.Completion})
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read corpus: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("no prompt/completion records found")
	}
	out, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return 0, fmt.Errorf("write output: %w", err)
	}
	return len(records), nil
}

// ConvertFile converts inPath (JSONL) to outPath (JSON array).
func ConvertFile(inPath, outPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()
	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	n, cerr := Convert(in, out)
	if err := out.Close(); cerr == nil && err != nil {
		return 0, err
	}
	return n, cerr
}
