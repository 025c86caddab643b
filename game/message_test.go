package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		input string
		want  Move
	}{
		{"3,4", Move{Position: Position{X: 3, Y: 4}}},
		{"0,0", Move{Position: Position{X: 0, Y: 0}}},
		{" 18 , 2 \n", Move{Position: Position{X: 18, Y: 2}}},
		{"25,1", Move{Position: Position{X: 25, Y: 1}}},
		{"-1,1", Move{Position: Position{X: -1, Y: 1}}},
		{"pass", Move{Pass: true}},
		{"PASS", Move{Pass: true}},
		{" Pass\n", Move{Pass: true}},
	}
	for _, tt := range tests {
		got, err := ParseMove(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseMove_Malformed(t *testing.T) {
	for _, input := range []string{"", "3", "3;4", "a,4", "3,b", "3,4,5", "3.5,1", ",", "passes"} {
		_, err := ParseMove(input)
		assert.ErrorIs(t, err, ErrParse, "input %q", input)
	}
}

func TestMove_String(t *testing.T) {
	assert.Equal(t, "pass", Move{Pass: true}.String())
	assert.Equal(t, "3,4", Move{Position: Position{X: 3, Y: 4}}.String())
}
