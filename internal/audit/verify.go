package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/skillguard/internal/model"
)

// VerifyResult holds the outcome of a hash chain verification.
type VerifyResult struct {
	Valid     bool           `json:"valid"`
	Lines     int            `json:"lines"`
	Decisions map[string]int `json:"decisions,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorLine int            `json:"error_line,omitempty"`
}

// Verify reads a JSONL audit log and validates the hash chain. It reports the
// first broken link, or Valid=true with per-decision counts.
func Verify(path string) VerifyResult {
	f, err := os.Open(path)
	if err != nil {
		return VerifyResult{Error: fmt.Sprintf("open: %v", err)}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	expected := GenesisHash
	decisions := make(map[string]int)

	for scanner.Scan() {
		lineNum++
		// scanner reuses its buffer; hash a private copy
		line := append([]byte(nil), scanner.Bytes()...)

		var entry AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return VerifyResult{
				Error:     fmt.Sprintf("parse error: %v", err),
				ErrorLine: lineNum,
			}
		}

		if entry.PrevHash != expected {
			msg := fmt.Sprintf("hash mismatch: expected %s, got %s", expected, entry.PrevHash)
			if lineNum == 1 {
				msg = fmt.Sprintf("first entry prev_hash is %q, expected genesis hash", entry.PrevHash)
			}
			return VerifyResult{Error: msg, ErrorLine: lineNum}
		}

		if _, ok := model.ParseDecision(entry.Decision); !ok {
			return VerifyResult{
				Error:     fmt.Sprintf("unknown decision %q", entry.Decision),
				ErrorLine: lineNum,
			}
		}
		decisions[entry.Decision]++
		expected = HashLine(line)
	}

	if err := scanner.Err(); err != nil {
		return VerifyResult{Error: fmt.Sprintf("scan: %v", err)}
	}

	return VerifyResult{Valid: true, Lines: lineNum, Decisions: decisions}
}
