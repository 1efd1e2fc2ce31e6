package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avflux/chronos/internal/model"
)

func TestStartFromZeroValue(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	// A freshly constructed activity has no state set yet; that counts
	// as inactive and must be startable.
	var a model.Activity
	require.NoError(t, a.Start(now))
	assert.Equal(t, model.ActivityActive, a.State)
	require.NotNil(t, a.StartTime)
	assert.Equal(t, now, *a.StartTime)
}

func TestStartFromExplicitInactive(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	a := model.Activity{State: model.ActivityInactive}
	require.NoError(t, a.Start(now))
	assert.Equal(t, model.ActivityActive, a.State)
}

func TestStartRejectsStartedStates(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	for _, state := range []model.ActivityState{
		model.ActivityActive,
		model.ActivityPaused,
		model.ActivityCompleted,
	} {
		a := model.Activity{State: state}
		assert.Error(t, a.Start(now), "state %q must not be startable", state)
	}
}
