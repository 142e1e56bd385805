// Package config loads the project file and credentials for an analysis run.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"
)

const (
	// DefaultPath is where the project file is looked up when no --config flag is given.
	DefaultPath = "src/project_data.json"

	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com/"

	TokenEnv = "GITHUB_TOKEN"
	AIKeyEnv = "DEEPSEEK_API_KEY"
)

var (
	ErrMissingToken         = errors.New(TokenEnv + " is not set")
	ErrMissingRepositoryURL = errors.New("repository_url is not set")
)

// Error is returned for missing or unreadable configuration.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("configuration error: %v", e.Err)
	}
	return fmt.Sprintf("configuration error in %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Project is the project file. JSON is decoded with encoding/json, so duplicate
// keys resolve last-wins; anything that is not JSON falls back to yaml.v3.
type Project struct {
	RepositoryURL string   `yaml:"repository_url" json:"repository_url"`
	Name          string   `yaml:"name,omitempty" json:"name,omitempty"`
	Description   string   `yaml:"description,omitempty" json:"description,omitempty"`
	Settings      Settings `yaml:"settings" json:"settings"`
}

// Settings tunes the client and the local filesystem probes.
type Settings struct {
	APIBaseURL        string  `yaml:"api_base_url,omitempty" json:"api_base_url,omitempty"`
	Concurrency       int     `yaml:"concurrency,omitempty" json:"concurrency,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty" json:"requests_per_second,omitempty"`
	LocalRoot         string  `yaml:"local_root,omitempty" json:"local_root,omitempty"`
	TestRoot          string  `yaml:"test_root,omitempty" json:"test_root,omitempty"`
}

// Config is everything a run needs, passed explicitly to constructors.
type Config struct {
	Project     Project
	GitHubToken string
	// AIKey is loaded for the completion service but nothing consumes it yet.
	AIKey string
}

// Load reads the project file at path and resolves credentials through getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return Parse(path, data, getenv)
}

// Parse is Load without the file read.
func Parse(path string, data []byte, getenv func(string) string) (*Config, error) {
	project, err := decodeProject(data)
	if err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("error parsing project file: %w", err)}
	}
	if project.RepositoryURL == "" {
		return nil, &Error{Path: path, Err: ErrMissingRepositoryURL}
	}
	applyDefaults(&project.Settings)

	cfg := &Config{
		Project:     project,
		GitHubToken: getenv(TokenEnv),
		AIKey:       getenv(AIKeyEnv),
	}
	if cfg.GitHubToken == "" {
		return nil, &Error{Err: ErrMissingToken}
	}
	return cfg, nil
}

func decodeProject(data []byte) (Project, error) {
	var project Project
	if json.Valid(data) {
		err := json.Unmarshal(data, &project)
		return project, err
	}
	err := yaml.Unmarshal(data, &project)
	return project, err
}

func applyDefaults(s *Settings) {
	if s.APIBaseURL == "" {
		s.APIBaseURL = DefaultAPIBaseURL
	}
	if s.Concurrency <= 0 {
		s.Concurrency = 1
	}
	if s.LocalRoot == "" {
		s.LocalRoot = "."
	}
}
