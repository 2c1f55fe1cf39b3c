package subject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/genaiterest/pkg/gallery/subject"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		response string
		n        int
		want     []string
	}{
		{
			name:     "numbered list with trailing filler",
			response: "1. red barn\n2. old tractor\n\nHere are some ideas",
			n:        2,
			want:     []string{"red barn", "old tractor"},
		},
		{
			name:     "llama style preamble",
			response: "  Sure! Here are 3 architecture photography subjects:\n\n1. Brutalist concrete tower\n2. Glass atrium at dusk\n3. Spiral staircase from above",
			n:        10,
			want:     []string{"Brutalist concrete tower", "Glass atrium at dusk", "Spiral staircase from above"},
		},
		{
			name:     "bullets and parens",
			response: "- neon alley mural\n* stenciled portrait\n• tagged freight train\n4) rooftop piece",
			n:        0,
			want:     []string{"neon alley mural", "stenciled portrait", "tagged freight train", "rooftop piece"},
		},
		{
			name:     "windows line endings and quotes",
			response: "1. \"vintage roadster\"\r\n2. “chrome grille close-up”\r\n",
			n:        5,
			want:     []string{"vintage roadster", "chrome grille close-up"},
		},
		{
			name:     "leading number that belongs to the phrase",
			response: "1920s diner booth\n3D printed vase",
			n:        0,
			want:     []string{"1920s diner booth", "3D printed vase"},
		},
		{
			name:     "punctuated number that belongs to the phrase",
			response: "3.5mm lens close-up\n10:30 train departure\n2) 2:1 aspect portrait",
			n:        0,
			want:     []string{"3.5mm lens close-up", "10:30 train departure", "2:1 aspect portrait"},
		},
		{
			name:     "truncates to n",
			response: "a\nb\nc\nd",
			n:        2,
			want:     []string{"a", "b"},
		},
		{
			name:     "shorter than n",
			response: "1. only one",
			n:        10,
			want:     []string{"only one"},
		},
		{
			name:     "empty",
			response: "",
			n:        10,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, subject.Extract(tt.response, tt.n))
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	first := subject.Extract("1. red barn\n2. old tractor\n3. 1920s diner booth\n- hay bales at dawn\n4) 2:1 aspect portrait\n5. 3.5mm lens close-up", 0)
	require.Len(t, first, 6)

	joined := ""
	for _, p := range first {
		joined += p + "\n"
	}
	assert.Equal(t, first, subject.Extract(joined, 0))
}

func TestLines_MalformedSkipped(t *testing.T) {
	phrases, skipped := subject.Lines("1. red barn\n2.\n***\n3. old tractor")

	assert.Equal(t, []string{"red barn", "old tractor"}, phrases)
	require.Len(t, skipped, 2)
	for _, err := range skipped {
		assert.ErrorIs(t, err, subject.ErrMalformedLine)
	}
}
