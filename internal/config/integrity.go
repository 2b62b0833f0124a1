package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// IntegrityResult collects the outcome of checking engine scripts against
// the .checksums manifest.
type IntegrityResult struct {
	Passed   bool
	Warnings []string
	Errors   []string
}

// VerifyIntegrity checks every configured engine script against the
// .checksums manifest. A missing manifest is a warning; a mismatch, an
// unlisted script or an unreadable script is an error.
func VerifyIntegrity(cfg *Config) (*IntegrityResult, error) {
	result := &IntegrityResult{Passed: true}

	configDir := cfg.ConfigDir()
	if configDir == "" {
		return result, nil
	}

	checksumPath := filepath.Join(configDir, ChecksumFile)
	manifest, err := LoadChecksums(configDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("no .checksums manifest found at %s; run 'polyc lock' to enable integrity verification", checksumPath))
			return result, nil
		}
		return nil, err
	}

	fail := func(msg string) {
		result.Passed = false
		result.Errors = append(result.Errors, msg)
	}

	for _, script := range cfg.Scripts() {
		key := manifestKey(configDir, script)
		expectedHash, inManifest := manifest.Hashes[key]
		if !inManifest {
			fail(fmt.Sprintf("engine script %s not in .checksums manifest", script))
			continue
		}

		actualHash, err := ComputeBlake3Hash(script)
		if err != nil {
			fail(fmt.Sprintf("failed to hash %s: %v", script, err))
			continue
		}

		if actualHash != expectedHash {
			fail(fmt.Sprintf("hash mismatch for %s (expected %s, got %s)", script, expectedHash, actualHash))
		}
	}

	return result, nil
}
