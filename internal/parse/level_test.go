package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected int
		wantErr  bool
	}{
		{name: "Plain digit", raw: "3", expected: 3},
		{name: "Padded digit", raw: " 5 ", expected: 5},
		{name: "Level prefix", raw: "Level 2", expected: 2},
		{name: "Short prefix", raw: "l4", expected: 4},
		{name: "Lowest level", raw: "1", expected: 1},
		{name: "Zero is not selectable", raw: "0", wantErr: true},
		{name: "Above range", raw: "6", wantErr: true},
		{name: "Negative", raw: "-1", wantErr: true},
		{name: "Command name", raw: "HIGH", wantErr: true},
		{name: "Empty", raw: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, err := Level(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "192.168.1.100", Address("192.168.1.100"))
	assert.Equal(t, "192.168.1.100:8080", Address("http://192.168.1.100:8080/"))
	assert.Equal(t, "fan.local", Address("  https://fan.local/set  "))
	assert.Equal(t, "", Address(""))
}
