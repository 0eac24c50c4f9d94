package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagList_SortedAndStable(t *testing.T) {
	t.Parallel()

	flags := map[string]bool{
		"zero_variance":          true,
		"anisotropy_out_of_band": true,
		"variogram_poor_fit":     false,
		"facies_empty_oxbow":     true,
	}
	want := "anisotropy_out_of_band;facies_empty_oxbow;zero_variance"
	for i := 0; i < 20; i++ {
		assert.Equal(t, want, flagList(flags))
	}
}

func TestFlagList_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", flagList(nil))
	assert.Equal(t, "", flagList(map[string]bool{"zero_variance": false}))
}
