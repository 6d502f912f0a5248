package audit

// TimestampFormat is the layout used in audit entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// AuditEntry is one line in the hash-chained JSONL audit log.
// All fields are plain strings so json.Marshal output is deterministic,
// which keeps hashes reproducible.
type AuditEntry struct {
	Timestamp  string `json:"ts"`
	SessionID  string `json:"session_id,omitempty"`
	Tool       string `json:"tool,omitempty"`
	Skill      string `json:"skill"`
	Decision   string `json:"decision"`
	Reason     string `json:"reason"`
	PolicyHash string `json:"policy_hash"`
	PrevHash   string `json:"prev_hash"`
}
