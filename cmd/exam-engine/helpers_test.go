// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/exam-engine/internal/segment"
	"github.com/pdiddy/exam-engine/pkg/types"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"collapse \n  spaces", 40, "collapse spaces"},
		{"甲公司与乙公司签订买卖合同", 6, "甲公司与乙…"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n), tt.in)
	}
}

func TestWithTimeout(t *testing.T) {
	v, err := withTimeout(context.Background(), func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, err = withTimeout(context.Background(), func() (int, error) { return 0, errors.New("boom") })
	assert.EqualError(t, err, "boom")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)
	_, err = withTimeout(ctx, func() (int, error) {
		<-release
		return 1, nil
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "parse timed out")
}

func TestParseTimeout(t *testing.T) {
	assert.Equal(t, 60*time.Second, parseTimeout(types.ParseConfig{}))
	assert.Equal(t, time.Second, parseTimeout(types.ParseConfig{Timeout: time.Second}))
}

func TestQuestionOptions(t *testing.T) {
	opts, err := questionOptions(types.ParseConfig{Convention: "dotted", ExpectedOptions: -1})
	require.NoError(t, err)
	assert.Equal(t, segment.DottedNumeral, opts.Convention)
	require.NotNil(t, opts.Rules)
	assert.Zero(t, opts.Rules.ExpectedOptions)

	_, err = questionOptions(types.ParseConfig{Convention: "roman"})
	assert.Error(t, err)
}

func TestAnswerOptionsDefaultDotted(t *testing.T) {
	opts, err := answerOptions(types.ParseConfig{})
	require.NoError(t, err)
	assert.Equal(t, segment.DottedNumeral, opts.Convention)
}
