package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareIDs(t *testing.T) {
	assert.Zero(t, CompareIDs("109", "109"))
	assert.Positive(t, CompareIDs("110", "109"))
	assert.Negative(t, CompareIDs("99", "100"), "shorter numeric id is older")
	assert.Positive(t, CompareIDs("1000", "999"))
	assert.Zero(t, CompareIDs("0100", "100"), "leading zeros are ignored")
	assert.Positive(t, CompareIDs("b", "a"), "non-numeric ids compare lexically")
	assert.Negative(t, CompareIDs("", "1"))
}
