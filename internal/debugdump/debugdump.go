// Package debugdump persists the Intent Store as a JSON object mapping each
// fullname to its intent label, for reproducible test fixtures and for cmd/packtui-debug's
// dump-intent subcommand. The core itself owns no other persisted state.
package debugdump

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manasm11/packtui/internal/intent"
	"github.com/manasm11/packtui/internal/pkgdb"
)

// Save writes every non-Default intent in store as a JSON object of
// fullname -> intent string, creating parent directories as needed.
func Save(path string, store *intent.Store, cache *pkgdb.Cache) error {
	dump := make(map[string]string)
	for _, e := range store.Iter() {
		pkg, ok := cache.GetByHandle(e.Handle)
		if !ok {
			continue
		}
		dump[pkg.Fullname] = e.Intent.String()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating intent dump directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling intent dump: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing intent dump: %w", err)
	}
	return nil
}

// Load reads a dump written by Save and applies it to store, resolving
// each fullname through cache (assigning a fresh handle if the package
// hasn't been seen yet this run). Returns nil, leaving store untouched,
// if path does not exist.
func Load(path string, store *intent.Store, cache *pkgdb.Cache) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading intent dump: %w", err)
	}

	var dump map[string]string
	if err := json.Unmarshal(data, &dump); err != nil {
		return fmt.Errorf("parsing intent dump: %w", err)
	}

	for fullname, label := range dump {
		pkg, ok := cache.Get(fullname)
		if !ok {
			continue
		}
		store.Set(pkg.Handle, parseIntent(label))
	}
	return nil
}

func parseIntent(label string) intent.Intent {
	switch label {
	case "install":
		return intent.Install
	case "remove":
		return intent.Remove
	case "hold":
		return intent.Hold
	default:
		return intent.Default
	}
}
