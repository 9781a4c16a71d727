// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "exam-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// CategoryRange maps an inclusive identifier range to a subject category.
type CategoryRange struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	From int    `json:"from" yaml:"from" mapstructure:"from"`
	To   int    `json:"to" yaml:"to" mapstructure:"to"`
}

// ParseConfig holds settings for question-document parsing.
type ParseConfig struct {
	// ExpectedOptions is the option count every question should carry
	// (default 4). A negative value disables the count check, for
	// true/false sets; zero keeps the default.
	ExpectedOptions int `json:"expected_options" yaml:"expected_options" mapstructure:"expected_options"`

	// BleedKeywords are the explanation words that must not appear inside
	// option text. Empty uses the built-in list.
	BleedKeywords []string `json:"bleed_keywords" yaml:"bleed_keywords" mapstructure:"bleed_keywords"`

	// Categories maps identifier ranges to categories for grouping output.
	Categories []CategoryRange `json:"categories" yaml:"categories" mapstructure:"categories"`

	// Convention is the identifier style of question documents,
	// "bracket" (default) or "dotted".
	Convention string `json:"convention" yaml:"convention" mapstructure:"convention"`

	// AnswerConvention is the identifier style of answer documents
	// (default "dotted").
	AnswerConvention string `json:"answer_convention" yaml:"answer_convention" mapstructure:"answer_convention"`

	// Timeout bounds one parse run as seen by the caller (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// MergeConfig holds settings for the two-document merge.
type MergeConfig struct {
	// Placeholder replaces the explanation of questions without an answer
	// record (default "answer missing").
	Placeholder string `json:"placeholder" yaml:"placeholder" mapstructure:"placeholder"`

	// OutputPath is where the combined Markdown artifact is written.
	// Empty writes to stdout.
	OutputPath string `json:"output_path" yaml:"output_path" mapstructure:"output_path"`
}

// StoreConfig holds settings for the SQLite question store.
type StoreConfig struct {
	// Dir is the directory holding exam.db and exports.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ProbeConfig holds settings for the embedding API connectivity probe.
type ProbeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the URL probed (e.g. "https://api.example.com/v1/embeddings").
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Model is sent in the probe payload when non-empty.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// MaxRetries is the number of retries on 429/503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SandboxConfig holds settings for isolated parsing inside a container.
type SandboxConfig struct {
	// Image is the container image that carries the exam-engine binary.
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Timeout bounds one isolated run (default 60s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "json" or "pretty".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all command configurations.
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
	Parse   ParseConfig   `json:"parse" yaml:"parse" mapstructure:"parse"`
	Merge   MergeConfig   `json:"merge" yaml:"merge" mapstructure:"merge"`
	Store   StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	Probe   ProbeConfig   `json:"probe" yaml:"probe" mapstructure:"probe"`
	Sandbox SandboxConfig `json:"sandbox" yaml:"sandbox" mapstructure:"sandbox"`
}
