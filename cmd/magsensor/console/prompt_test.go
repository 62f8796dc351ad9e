package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchConstraint(t *testing.T) {
	tests := []struct {
		response string
		expected string
	}{
		{"", Yes},
		{"n", No},
		{" N ", No},
		{"y", Yes},
		{"maybe", Yes},
	}
	for _, test := range tests {
		t.Run(test.response, func(t *testing.T) {
			assert.Equal(t, test.expected, matchConstraint(test.response, yesNoConstraints))
		})
	}
}
