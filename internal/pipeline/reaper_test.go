// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pipeline

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-FFFFFF/shellax/internal/command"
	"github.com/matt-FFFFFF/shellax/internal/spawn"
)

func blockingStage(t *testing.T, index int, release <-chan struct{}, code int) *stage {
	t.Helper()

	h, err := spawn.Go(context.Background(), "block", func(context.Context, io.Reader, io.Writer, io.Writer) int {
		<-release
		return code
	}, spawn.Stdio{}, nil)
	require.NoError(t, err)

	return &stage{
		cmd:    &command.Command{Name: "block"},
		index:  index,
		handle: h,
		result: StageResult{Index: index, Name: "block", Started: true, ExitCode: -1},
	}
}

func TestReaper_TracksJobs(t *testing.T) {
	r := NewReaper()
	ctx := context.Background()

	release1 := make(chan struct{})
	release2 := make(chan struct{})

	j1 := r.Track(ctx, "first &", []*stage{blockingStage(t, 0, release1, 0)})
	j2 := r.Track(ctx, "second &", []*stage{blockingStage(t, 0, release2, 4), blockingStage(t, 1, release2, 5)})

	assert.Equal(t, 1, j1.ID)
	assert.Equal(t, 2, j2.ID)
	assert.Equal(t, 2, r.Running())
	assert.Empty(t, r.Finished())
	assert.Nil(t, j1.Stages(), "results are not available while running")

	close(release1)
	<-j1.Done()

	finished := r.Finished()
	require.Len(t, finished, 1)
	assert.Equal(t, "first &", finished[0].Line)
	assert.Equal(t, 1, r.Running())

	close(release2)
	r.Wait()

	finished = r.Finished()
	require.Len(t, finished, 1)
	assert.Equal(t, j2, finished[0])

	stages := j2.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, 4, stages[0].ExitCode)
	assert.Equal(t, 5, stages[1].ExitCode)
	assert.Equal(t, 0, r.Running())
}

func TestReaper_WaitWithoutJobs(t *testing.T) {
	r := NewReaper()
	r.Wait()
	assert.Empty(t, r.Finished())
}
