package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestData_Validate(t *testing.T) {
	r := RequestData{
		Report:   "https://cn.fflogs.com/reports/a1b2c3d4e5f6g7h8?fight=12&type=damage-done",
		APIKey:   " key ",
		Datasets: map[int]string{1: " new P1 ", 2: " "},
	}

	assert.True(t, r.Validate())
	assert.Equal(t, "a1b2c3d4e5f6g7h8", r.Report)
	assert.Equal(t, 12, r.Fight)
	assert.Equal(t, "key", r.APIKey)
	assert.Equal(t, map[int]string{1: "new P1"}, r.Datasets)
}

func TestRequestData_ValidateRejects(t *testing.T) {
	for _, r := range []RequestData{
		{Report: "not a report", APIKey: "key"},
		{Report: "a1b2c3d4e5f6g7h8"},
		{Report: "a1b2c3d4e5f6g7h8", APIKey: "key", Fight: -1},
	} {
		assert.False(t, r.Validate(), r.Report)
	}
}

func TestRequestData_HashIgnoresAPIKey(t *testing.T) {
	a := RequestData{Report: "a1b2c3d4e5f6g7h8", Fight: 3, APIKey: "one", Datasets: map[int]string{1: "x", 2: "y"}}
	b := RequestData{Report: "a1b2c3d4e5f6g7h8", Fight: 3, APIKey: "two", Datasets: map[int]string{2: "y", 1: "x"}}
	c := RequestData{Report: "a1b2c3d4e5f6g7h8", Fight: 3, APIKey: "one", Datasets: map[int]string{1: "y"}}

	assert.Equal(t, a.Hash(), b.Hash())
	assert.NotEqual(t, a.Hash(), c.Hash())
}
