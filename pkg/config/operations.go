package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ConfigureOperation represents a configuration operation
type ConfigureOperation struct {
	Name        string
	Usage       string
	Description string
	Handler     func(cfg *Config, args []string, out io.Writer) error
}

// GetOperations returns available configuration operations
func GetOperations() []ConfigureOperation {
	return []ConfigureOperation{
		{
			Name:        "show",
			Usage:       "show",
			Description: "Show current configuration",
			Handler:     showConfig,
		},
		{
			Name:        "repo",
			Usage:       "repo <url>",
			Description: "Set the extension repository URL",
			Handler:     configureRepo,
		},
		{
			Name:        "lib-range",
			Usage:       "lib-range <min> <max>",
			Description: "Set the supported extension library versions",
			Handler:     configureLibRange,
		},
		{
			Name:        "token",
			Usage:       "token [token]",
			Description: "Set GitHub API token (no argument clears it)",
			Handler:     configureGitHubToken,
		},
		{
			Name:        "root",
			Usage:       "root <dir>",
			Description: "Change root directory",
			Handler:     configureRootDir,
		},
	}
}

// FindOperation returns the operation with the given name
func FindOperation(name string) (*ConfigureOperation, error) {
	for _, op := range GetOperations() {
		if op.Name == name {
			return &op, nil
		}
	}
	return nil, fmt.Errorf("unknown operation: %s", name)
}

func configureRepo(cfg *Config, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one repository URL")
	}

	url := strings.TrimRight(strings.TrimSpace(args[0]), "/")
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("repository URL must be http(s): %s", url)
	}

	cfg.RepoURL = url
	if err := cfg.Save(KeyRepoURL); err != nil {
		return err
	}
	fmt.Fprintf(out, "Repository set to %s\n", url)
	return nil
}

func configureLibRange(cfg *Config, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <min> <max>")
	}

	lo, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid min version %q: %w", args[0], err)
	}
	hi, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid max version %q: %w", args[1], err)
	}
	if lo <= 0 {
		return fmt.Errorf("min version must be positive, got %v", lo)
	}
	if lo > hi {
		return fmt.Errorf("min version %v is greater than max version %v", lo, hi)
	}

	cfg.LibVersionMin, cfg.LibVersionMax = lo, hi
	if err := cfg.Save(KeyLibVersionMin, KeyLibVersionMax); err != nil {
		return err
	}
	fmt.Fprintf(out, "Library versions set to %v..%v\n", lo, hi)
	return nil
}

func configureGitHubToken(cfg *Config, args []string, out io.Writer) error {
	token := ""
	if len(args) > 0 {
		token = strings.TrimSpace(args[0])
	}

	if token == "" {
		// Clear token if empty input
		cfg.GitHubToken = ""
		fmt.Fprintln(out, "GitHub token cleared")
	} else {
		cfg.GitHubToken = token
		fmt.Fprintln(out, "GitHub token updated")
	}

	return cfg.Save(KeyGitHubToken)
}

func configureRootDir(cfg *Config, args []string, out io.Writer) error {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(out, "Root directory unchanged")
		return nil
	}
	newDir := strings.TrimSpace(args[0])

	// Expand ~ to home directory
	if newDir == "~" || strings.HasPrefix(newDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		if newDir == "~" {
			newDir = home
		} else {
			newDir = filepath.Join(home, newDir[2:])
		}
	}

	// Make path absolute
	absPath, err := filepath.Abs(newDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	cfg.RootDir = absPath
	if err := cfg.Save(KeyRootDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "Root directory changed to %s\n", absPath)
	fmt.Fprintln(out, "Note: You'll need to move any existing extensions and databases to the new location manually")
	return nil
}

func showConfig(cfg *Config, _ []string, out io.Writer) error {
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "Root directory: %s\n", cfg.RootDir)
	fmt.Fprintf(out, "Repository: %s\n", cfg.RepoURL)
	fmt.Fprintf(out, "Library versions: %v..%v\n", cfg.LibVersionMin, cfg.LibVersionMax)
	fmt.Fprintf(out, "Timeout: %s\n", cfg.Timeout())
	fmt.Fprintf(out, "Log level: %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "Blacklist: %d packages\n", len(cfg.Blacklist))
	if len(cfg.Languages) > 0 {
		fmt.Fprintf(out, "Languages: %s\n", strings.Join(cfg.Languages, ", "))
	} else {
		fmt.Fprintln(out, "Languages: [from environment]")
	}
	if cfg.GitHubToken != "" {
		fmt.Fprintln(out, "GitHub token: [set]")
	} else {
		fmt.Fprintln(out, "GitHub token: [not set]")
	}
	return nil
}
