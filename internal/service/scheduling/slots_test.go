package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSlots(t *testing.T) {
	t.Run("standard day at 30 minutes", func(t *testing.T) {
		slots := GenerateSlots("09:00", "17:00", 30)
		assert.Len(t, slots, 16)
		assert.Equal(t, "09:00", slots[0])
		assert.Equal(t, "16:30", slots[len(slots)-1])
	})

	t.Run("hourly granularity", func(t *testing.T) {
		slots := GenerateSlots("09:00", "11:00", 60)
		assert.Equal(t, []string{"09:00", "10:00"}, slots)
	})

	t.Run("granularity not dividing window evenly", func(t *testing.T) {
		slots := GenerateSlots("09:00", "10:00", 45)
		// 09:45 starts inside the window even though it runs past close
		assert.Equal(t, []string{"09:00", "09:45"}, slots)
	})

	t.Run("inverted window yields nothing", func(t *testing.T) {
		assert.Nil(t, GenerateSlots("17:00", "09:00", 30))
	})

	t.Run("empty window yields nothing", func(t *testing.T) {
		assert.Nil(t, GenerateSlots("09:00", "09:00", 30))
	})

	t.Run("non-positive granularity yields nothing", func(t *testing.T) {
		assert.Nil(t, GenerateSlots("09:00", "17:00", 0))
		assert.Nil(t, GenerateSlots("09:00", "17:00", -15))
	})
}

func TestFilterBooked(t *testing.T) {
	candidates := GenerateSlots("09:00", "12:00", 60)

	t.Run("removes exactly the booked times", func(t *testing.T) {
		open := FilterBooked(candidates, []string{"10:00"})
		assert.Equal(t, []string{"09:00", "11:00"}, open)
	})

	t.Run("keeps order of remaining slots", func(t *testing.T) {
		open := FilterBooked(candidates, []string{"09:00", "11:00"})
		assert.Equal(t, []string{"10:00"}, open)
	})

	t.Run("unpadded booked times still match", func(t *testing.T) {
		open := FilterBooked(candidates, []string{"9:00"})
		assert.Equal(t, []string{"10:00", "11:00"}, open)
	})

	t.Run("nothing booked returns all candidates", func(t *testing.T) {
		assert.Equal(t, candidates, FilterBooked(candidates, nil))
	})

	t.Run("everything booked returns nothing", func(t *testing.T) {
		assert.Empty(t, FilterBooked(candidates, candidates))
	})
}

func TestNormalizeTime(t *testing.T) {
	assert.Equal(t, "09:00", normalizeTime("9:00"))
	assert.Equal(t, "09:05", normalizeTime("9:05"))
	assert.Equal(t, "23:59", normalizeTime("23:59"))
	// malformed input passes through untouched
	assert.Equal(t, "25:00", normalizeTime("25:00"))
}

func TestInWindow(t *testing.T) {
	assert.True(t, inWindow("09:00", "09:00", "17:00"))
	assert.True(t, inWindow("16:59", "09:00", "17:00"))
	assert.False(t, inWindow("17:00", "09:00", "17:00"))
	assert.False(t, inWindow("08:59", "09:00", "17:00"))
}
