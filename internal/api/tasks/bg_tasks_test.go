package tasks

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	bgTasks := New(slog.Default(), 3, 10)
	bgTasks.Run()
	taskRunned := false
	task := func() {
		t.Log("task")
		taskRunned = true
	}
	bgTasks.Add(task)
	bgTasks.Shutdown(context.Background())
	assert.True(t, taskRunned)
}

func TestShutdownDrainsQueue(t *testing.T) {
	bgTasks := New(slog.Default(), 1, 10)
	bgTasks.Run()
	done := 0
	for i := 0; i < 5; i++ {
		bgTasks.Add(func() { done++ })
	}
	assert.NoError(t, bgTasks.Shutdown(context.Background()))
	assert.Equal(t, 5, done)
	assert.True(t, bgTasks.IsEmpty())
}
