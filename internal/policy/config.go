package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultRestrictedNamespace is the namespace automated callers most often
// guess when they do not know the real one.
const DefaultRestrictedNamespace = "pr-review-toolkit"

// DefaultKnownMembers lists the canonical skills of DefaultRestrictedNamespace.
var DefaultKnownMembers = []string{
	"code-reviewer",
	"silent-failure-hunter",
	"code-simplifier",
	"comment-analyzer",
	"pr-test-analyzer",
	"type-design-analyzer",
}

// File is the on-disk YAML shape of the advisory policy.
type File struct {
	RestrictedNamespace string   `yaml:"restricted_namespace"`
	KnownMembers        []string `yaml:"known_members"`
}

// Config is the compiled advisory policy. It is immutable once built;
// reloading produces a new Config.
type Config struct {
	raw     File
	members map[string]struct{}
}

// New compiles a Config from its file representation.
func New(f File) *Config {
	c := &Config{
		raw: File{
			RestrictedNamespace: f.RestrictedNamespace,
			KnownMembers:        slices.Clone(f.KnownMembers),
		},
		members: make(map[string]struct{}, len(f.KnownMembers)),
	}
	for _, m := range f.KnownMembers {
		c.members[m] = struct{}{}
	}
	return c
}

// DefaultConfig returns the built-in member table.
func DefaultConfig() *Config {
	return New(File{
		RestrictedNamespace: DefaultRestrictedNamespace,
		KnownMembers:        DefaultKnownMembers,
	})
}

// RestrictedNamespace returns the namespace subject to the advisory check.
func (c *Config) RestrictedNamespace() string {
	return c.raw.RestrictedNamespace
}

// KnownMembers returns a copy of the member list in file order.
func (c *Config) KnownMembers() []string {
	return slices.Clone(c.raw.KnownMembers)
}

// IsKnownMember reports whether name is a canonical member of the restricted namespace.
func (c *Config) IsKnownMember(name string) bool {
	_, ok := c.members[name]
	return ok
}

// File returns the file representation, suitable for re-marshalling.
func (c *Config) File() File {
	return File{
		RestrictedNamespace: c.raw.RestrictedNamespace,
		KnownMembers:        slices.Clone(c.raw.KnownMembers),
	}
}

// MarshalYAML renders the policy in its on-disk form.
func (c *Config) MarshalYAML() (any, error) {
	return c.File(), nil
}

// LoadConfig loads the advisory policy from a YAML file.
// Empty path or a missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// fileOverlay distinguishes absent keys from empty values.
type fileOverlay struct {
	RestrictedNamespace *string  `yaml:"restricted_namespace"`
	KnownMembers        []string `yaml:"known_members"`
}

// LoadConfigWithHash loads the advisory policy and returns the SHA-256 hash
// of the raw YAML bytes. When defaults are used, the hash is that of empty input.
//
// Keys absent from the file keep their defaults, except that naming a
// restricted namespace other than the default starts from an empty member
// list: the built-in members only describe DefaultRestrictedNamespace.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		return DefaultConfig(), HashBytes(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), HashBytes(nil), nil
		}
		return nil, "", fmt.Errorf("failed to read policy config: %w", err)
	}

	var overlay fileOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, "", fmt.Errorf("failed to parse policy config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	f := DefaultConfig().File()
	if overlay.RestrictedNamespace != nil {
		f.RestrictedNamespace = *overlay.RestrictedNamespace
		if f.RestrictedNamespace != DefaultRestrictedNamespace {
			f.KnownMembers = nil
		}
	}
	if overlay.KnownMembers != nil {
		f.KnownMembers = overlay.KnownMembers
	}

	return New(f), HashBytes(data), nil
}

// HashBytes returns "sha256:<hex>" of data.
func HashBytes(data []byte) string {
	h := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(h[:])
}
