// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/pkg/types"
)

const (
	// DefaultImage is used when SandboxConfig.Image is empty.
	DefaultImage = "exam-engine:latest"

	defaultTimeout = 60 * time.Second
)

// Runner parses documents through a container runtime.
type Runner struct {
	Runtime Runtime
	Image   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewRunner builds a runner from configuration around rt.
func NewRunner(rt Runtime, cfg types.SandboxConfig, log zerolog.Logger) *Runner {
	image := cfg.Image
	if image == "" {
		image = DefaultImage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{Runtime: rt, Image: image, Timeout: timeout, Logger: log}
}

// Check verifies the runner's image is present.
func (r *Runner) Check(ctx context.Context) error {
	return r.Runtime.ImageExists(ctx, r.Image)
}

// ParseRequest carries the subject and the parse settings the child
// process must apply. Zero values leave the child's defaults in place.
type ParseRequest struct {
	Subject         string
	Convention      string
	ExpectedOptions int
	BleedKeywords   []string
}

// args builds the child command line.
func (q ParseRequest) args() []string {
	args := []string{"parse", "-", q.Subject, "--json"}
	if q.Convention != "" {
		args = append(args, "--convention", q.Convention)
	}
	if q.ExpectedOptions != 0 {
		args = append(args, "--expected-options", strconv.Itoa(q.ExpectedOptions))
	}
	if len(q.BleedKeywords) > 0 {
		args = append(args, "--bleed-keywords", strings.Join(q.BleedKeywords, ","))
	}
	return args
}

// Parse pipes doc into "parse - <subject> --json" inside the container,
// forwarding the settings in req, and decodes the result. A child that
// reports failure (success=false) is not an error here: its ParseOutput is
// returned as-is. An error means the container could not run or produced
// no decodable output.
func (r *Runner) Parse(ctx context.Context, doc io.Reader, req ParseRequest) (emit.ParseOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	args := req.args()
	var stdout bytes.Buffer

	start := time.Now()
	runErr := r.Runtime.Run(ctx, r.Image, args, doc, &stdout)
	r.Logger.Debug().
		Str("runtime", r.Runtime.Name()).
		Str("image", r.Image).
		Dur("elapsed", time.Since(start)).
		Int("stdout_bytes", stdout.Len()).
		AnErr("run_error", runErr).
		Msg("isolated parse finished")

	if ctx.Err() != nil {
		return emit.ParseOutput{}, fmt.Errorf("isolated parse: %w", ctx.Err())
	}

	var out emit.ParseOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		if runErr != nil {
			return emit.ParseOutput{}, runErr
		}
		return emit.ParseOutput{}, fmt.Errorf("decoding isolated parse output: %w", err)
	}
	if runErr != nil && out.Success {
		return emit.ParseOutput{}, fmt.Errorf("isolated parse reported success but exited with error: %w", runErr)
	}
	return out, nil
}
