// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sandbox

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exam-engine/internal/emit"
	"github.com/pdiddy/exam-engine/internal/pipeline"
	"github.com/pdiddy/exam-engine/pkg/types"
)

// fakeRuntime runs an in-process function in place of a container.
type fakeRuntime struct {
	imageOK bool
	run     func(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error
	gotArgs []string
}

func (f *fakeRuntime) Name() string { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool { return true }
func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if f.imageOK {
		return nil
	}
	return errors.New("no image " + image)
}

func (f *fakeRuntime) Run(ctx context.Context, _ string, args []string, stdin io.Reader, stdout io.Writer) error {
	f.gotArgs = args
	return f.run(ctx, args, stdin, stdout)
}

// childParse stands in for the binary inside the container.
func childParse(_ context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	data, err := io.ReadAll(stdin)
	if err != nil {
		return err
	}
	set := pipeline.ParseQuestions(string(data), pipeline.Options{})
	return emit.WriteJSON(stdout, emit.NewParseOutput(args[2], set, nil))
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(&fakeRuntime{}, types.SandboxConfig{}, zerolog.Nop())
	assert.Equal(t, DefaultImage, r.Image)
	assert.Equal(t, defaultTimeout, r.Timeout)

	r = NewRunner(&fakeRuntime{}, types.SandboxConfig{Image: "custom:1", Timeout: time.Second}, zerolog.Nop())
	assert.Equal(t, "custom:1", r.Image)
	assert.Equal(t, time.Second, r.Timeout)
}

func TestRunnerParse(t *testing.T) {
	rt := &fakeRuntime{run: childParse}
	var logs bytes.Buffer
	r := NewRunner(rt, types.SandboxConfig{}, zerolog.New(&logs))

	doc := "【1】What is X? A.foo B.bar C.baz D.qux【解析】because foo【答案】A"
	out, err := r.Parse(context.Background(), strings.NewReader(doc), ParseRequest{Subject: "民法"})
	require.NoError(t, err)

	assert.Equal(t, []string{"parse", "-", "民法", "--json"}, rt.gotArgs)
	assert.True(t, out.Success)
	assert.Equal(t, "民法", out.Subject)
	require.Len(t, out.Questions, 1)
	assert.Equal(t, "because foo", out.Questions[0].Explanation)
	assert.Equal(t, []string{"A", "B", "C", "D"}, out.Questions[0].Options.Keys())
	assert.Contains(t, logs.String(), "isolated parse finished")
}

func TestRunnerParseForwardsSettings(t *testing.T) {
	tests := []struct {
		name string
		req  ParseRequest
		want []string
	}{
		{
			name: "defaults",
			req:  ParseRequest{Subject: "民法"},
			want: []string{"parse", "-", "民法", "--json"},
		},
		{
			name: "all settings",
			req: ParseRequest{
				Subject:         "刑法",
				Convention:      "dotted",
				ExpectedOptions: -1,
				BleedKeywords:   []string{"错误", "理由"},
			},
			want: []string{
				"parse", "-", "刑法", "--json",
				"--convention", "dotted",
				"--expected-options", "-1",
				"--bleed-keywords", "错误,理由",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &fakeRuntime{run: childParse}
			_, err := NewRunner(rt, types.SandboxConfig{}, zerolog.Nop()).Parse(context.Background(), strings.NewReader(""), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.gotArgs)
		})
	}
}

func TestRunnerParseChildFailure(t *testing.T) {
	rt := &fakeRuntime{run: func(_ context.Context, args []string, _ io.Reader, stdout io.Writer) error {
		emit.WriteJSON(stdout, emit.Failure(args[2], errors.New("container unreadable: stdin")))
		return errors.New("exit status 1")
	}}
	r := NewRunner(rt, types.SandboxConfig{}, zerolog.Nop())

	out, err := r.Parse(context.Background(), strings.NewReader("garbage"), ParseRequest{Subject: "民法"})
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "container unreadable")
}

func TestRunnerParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		run     func(context.Context, []string, io.Reader, io.Writer) error
		errPart string
	}{
		{
			name: "runtime fails without output",
			run: func(context.Context, []string, io.Reader, io.Writer) error {
				return errors.New("image pull failed")
			},
			errPart: "image pull failed",
		},
		{
			name: "output is not JSON",
			run: func(_ context.Context, _ []string, _ io.Reader, stdout io.Writer) error {
				_, err := stdout.Write([]byte("panic: oops"))
				return err
			},
			errPart: "decoding isolated parse output",
		},
		{
			name: "success with non-zero exit",
			run: func(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
				if err := childParse(ctx, args, stdin, stdout); err != nil {
					return err
				}
				return errors.New("exit status 2")
			},
			errPart: "exited with error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRunner(&fakeRuntime{run: tt.run}, types.SandboxConfig{}, zerolog.Nop())
			_, err := r.Parse(context.Background(), strings.NewReader(""), ParseRequest{Subject: "民法"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestRunnerParseTimeout(t *testing.T) {
	rt := &fakeRuntime{run: func(ctx context.Context, _ []string, _ io.Reader, _ io.Writer) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	r := NewRunner(rt, types.SandboxConfig{Timeout: 20 * time.Millisecond}, zerolog.Nop())

	_, err := r.Parse(context.Background(), strings.NewReader(""), ParseRequest{Subject: "民法"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunnerCheck(t *testing.T) {
	assert.NoError(t, NewRunner(&fakeRuntime{imageOK: true}, types.SandboxConfig{}, zerolog.Nop()).Check(context.Background()))
	assert.Error(t, NewRunner(&fakeRuntime{}, types.SandboxConfig{}, zerolog.Nop()).Check(context.Background()))
}
