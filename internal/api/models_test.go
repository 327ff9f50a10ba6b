package api

import (
	"testing"
	"time"

	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr error
	}{
		{"date only", "2030-01-15", time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC), nil},
		{"rfc3339 utc", "2030-01-15T09:30:00Z", time.Date(2030, 1, 15, 9, 30, 0, 0, time.UTC), nil},
		{"rfc3339 offset", "2030-01-15T09:30:00+02:00", time.Date(2030, 1, 15, 7, 30, 0, 0, time.UTC), nil},
		{"fractional seconds", "2030-01-15T09:30:00.250Z", time.Date(2030, 1, 15, 9, 30, 0, 250_000_000, time.UTC), nil},
		{"no zone", "2030-01-15T09:30:00", time.Date(2030, 1, 15, 9, 30, 0, 0, time.UTC), nil},
		{"surrounding whitespace", "  2030-01-15 ", time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC), nil},
		{"empty", "", time.Time{}, domain.ErrEmptyDeadline},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseDeadline(tc.input)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := parseDeadline("next tuesday")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestUpdateTaskRequest_ToPatch(t *testing.T) {
	t.Parallel()

	name := "Renamed"
	priority := "high"
	status := "completed"
	deadline := "2030-02-01"

	patch, err := UpdateTaskRequest{
		Name:     &name,
		Priority: &priority,
		Status:   &status,
		Deadline: &deadline,
	}.toPatch()
	require.NoError(t, err)

	require.NotNil(t, patch.Name)
	assert.Equal(t, "Renamed", *patch.Name)
	assert.Nil(t, patch.Description)
	assert.Nil(t, patch.Category)
	require.NotNil(t, patch.Deadline)
	assert.True(t, time.Date(2030, 2, 1, 0, 0, 0, 0, time.UTC).Equal(*patch.Deadline))

	require.NoError(t, patch.Normalize())
	assert.Equal(t, domain.PriorityHigh, *patch.Priority)
	assert.Equal(t, domain.StatusCompleted, *patch.Status)

	t.Run("empty request", func(t *testing.T) {
		t.Parallel()
		patch, err := UpdateTaskRequest{}.toPatch()
		require.NoError(t, err)
		assert.True(t, patch.IsEmpty())
	})

	t.Run("bad deadline", func(t *testing.T) {
		t.Parallel()
		bad := "soon"
		_, err := UpdateTaskRequest{Deadline: &bad}.toPatch()
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}
