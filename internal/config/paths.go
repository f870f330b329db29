package config

import (
	"os"
	"path/filepath"
)

// QuillPath returns the Quill home directory: $QUILL_PATH if set, else ~/.quill.
func QuillPath() string {
	if p := os.Getenv("QUILL_PATH"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quill"
	}
	return filepath.Join(home, ".quill")
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(QuillPath(), "config.jsonc")
}

// DotenvPath returns the default .env file location.
func DotenvPath() string {
	return filepath.Join(QuillPath(), ".env")
}
