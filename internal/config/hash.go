package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

// ChecksumFile is the manifest name written next to the config file.
const ChecksumFile = ".checksums"

// ChecksumManifest records the expected BLAKE3 hash of each engine script.
// Keys are script paths relative to the config directory when the script
// lives beneath it, absolute otherwise.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// HashUpdateFileResult captures checksum generation outcome for one script.
type HashUpdateFileResult struct {
	Key    string
	Path   string
	Exists bool
	Hash   string
}

// HashUpdateReport captures checksum generation details for a config.
type HashUpdateReport struct {
	ConfigDir    string
	ChecksumPath string
	Written      bool
	Files        []HashUpdateFileResult
}

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyFileHash verifies a file against an expected BLAKE3 hash.
func VerifyFileHash(filePath, expectedHash string) error {
	actualHash, err := ComputeBlake3Hash(filePath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	if actualHash != expectedHash {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s",
			filepath.Base(filePath), expectedHash, actualHash)
	}

	return nil
}

// ConfigDir returns the directory holding the config file, or "" for a
// defaults-only config.
func (c *Config) ConfigDir() string {
	if c.Path == "" {
		return ""
	}
	return filepath.Dir(c.Path)
}

// manifestKey names script inside the manifest for configDir.
func manifestKey(configDir, script string) string {
	rel, err := filepath.Rel(configDir, script)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return script
	}
	return rel
}

// GenerateChecksumsWithReport hashes the configured engine scripts and
// optionally writes .checksums next to the config file.
// When dryRun is true, it computes hashes and returns report details without writing files.
func GenerateChecksumsWithReport(cfg *Config, dryRun bool) (*HashUpdateReport, error) {
	configDir := cfg.ConfigDir()
	if configDir == "" {
		return nil, fmt.Errorf("no config file loaded; pass --config or set %s", EnvConfig)
	}

	manifest := ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      make(map[string]string),
	}

	scripts := cfg.Scripts()
	report := &HashUpdateReport{
		ConfigDir:    configDir,
		ChecksumPath: filepath.Join(configDir, ChecksumFile),
		Files:        make([]HashUpdateFileResult, 0, len(scripts)),
	}

	for _, script := range scripts {
		key := manifestKey(configDir, script)

		if _, err := os.Stat(script); os.IsNotExist(err) {
			report.Files = append(report.Files, HashUpdateFileResult{Key: key, Path: script})
			continue
		}

		hash, err := ComputeBlake3Hash(script)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", script, err)
		}

		manifest.Hashes[key] = hash
		report.Files = append(report.Files, HashUpdateFileResult{
			Key:    key,
			Path:   script,
			Exists: true,
			Hash:   hash,
		})
	}

	if dryRun {
		return report, nil
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checksums: %w", err)
	}

	if err := os.WriteFile(report.ChecksumPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write checksums: %w", err)
	}
	report.Written = true

	return report, nil
}

// LoadChecksums reads the .checksums file from a config directory.
func LoadChecksums(configDir string) (*ChecksumManifest, error) {
	checksumPath := filepath.Join(configDir, ChecksumFile)

	data, err := os.ReadFile(checksumPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checksums file not found (run 'polyc lock'): %w", err)
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}

	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}

	return &manifest, nil
}
