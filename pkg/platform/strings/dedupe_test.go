package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Equal(t, []string{"farmer", "student"}, DedupeAndTrimLower([]string{" Farmer", "farmer", "", "  ", "STUDENT"}))
	assert.Nil(t, DedupeAndTrimLower(nil))
	assert.Empty(t, DedupeAndTrimLower([]string{" "}))
}

func TestDedupeAndTrim(t *testing.T) {
	assert.Equal(t, []string{"Free seeds", "Crop insurance"}, DedupeAndTrim([]string{"Free seeds ", "Crop insurance", "Free seeds"}))
}

func TestTrimHelpers(t *testing.T) {
	a, b := "  x ", "y  "
	TrimStrings(&a, &b, nil)
	assert.Equal(t, "x", a)
	assert.Equal(t, "y", b)

	assert.Nil(t, TrimSpacePtr(nil))
	assert.Equal(t, "z", *TrimSpacePtr(ptr(" z ")))

	assert.Nil(t, DedupeAndTrimLowerPtr(nil))
	assert.Equal(t, []string{"urban"}, *DedupeAndTrimLowerPtr(&[]string{"Urban", "urban "}))
}

func ptr(s string) *string { return &s }
