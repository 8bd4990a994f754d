package mentorRepo

import (
	"testing"

	"mentorlink/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed(t *testing.T) {
	mentors, err := ParseSeed(" mentor-1:100000, mentor-2:2500:usd ,")
	require.NoError(t, err)
	assert.Equal(t, []models.Mentor{
		{ID: "mentor-1", HourlyRate: 100000},
		{ID: "mentor-2", HourlyRate: 2500, Currency: "USD"},
	}, mentors)

	empty, err := ParseSeed("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"mentor-1", "mentor-1:abc", ":100", "mentor-1:0", "a:1:b:c"} {
		_, err := ParseSeed(bad)
		assert.Error(t, err, bad)
	}
}
