package style_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NethermindEth/genaiterest/pkg/gallery/style"
)

func TestLookup(t *testing.T) {
	for _, c := range style.All() {
		t.Run(c.String(), func(t *testing.T) {
			def, err := style.Lookup(c)
			require.NoError(t, err)
			assert.NotEmpty(t, def.Name)
			assert.NotEmpty(t, def.NegativePrompt)
			assert.Equal(t, 1, strings.Count(def.Prompt, "{prompt}"))
		})
	}

	_, err := style.Lookup(style.Category(42))
	assert.ErrorIs(t, err, style.ErrUnknownCategory)

	_, err = style.Lookup(style.Category(-1))
	assert.ErrorIs(t, err, style.ErrUnknownCategory)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    style.Category
		wantErr bool
	}{
		{name: "exact", input: "architecture", want: style.Architecture},
		{name: "multi word", input: "tilt shift photography", want: style.TiltShiftPhotography},
		{name: "case and space", input: "  Food Photography ", want: style.FoodPhotography},
		{name: "unknown", input: "watercolor", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := style.Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, style.ErrUnknownCategory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAll(t *testing.T) {
	got, err := style.ParseAll([]string{"graffiti", "fashion"})
	require.NoError(t, err)
	assert.Equal(t, []style.Category{style.Graffiti, style.Fashion}, got)

	_, err = style.ParseAll([]string{"graffiti", "nope"})
	assert.ErrorIs(t, err, style.ErrUnknownCategory)
}

func TestDedupe(t *testing.T) {
	in := []style.Category{style.Architecture, style.Graffiti, style.Architecture, style.Graffiti, style.Fashion}

	assert.Equal(t, []style.Category{style.Architecture, style.Graffiti, style.Fashion}, style.Dedupe(in))
	assert.Equal(t, style.Architecture, in[2])
	assert.Empty(t, style.Dedupe(nil))
}

func TestCategory_JSON(t *testing.T) {
	var body struct {
		Categories []style.Category `json:"categories"`
	}
	err := json.Unmarshal([]byte(`{"categories":["minimalism","interior design"]}`), &body)
	require.NoError(t, err)
	assert.Equal(t, []style.Category{style.Minimalism, style.InteriorDesign}, body.Categories)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"categories":["minimalism","interior design"]}`, string(out))

	err = json.Unmarshal([]byte(`{"categories":["bogus"]}`), &body)
	assert.ErrorIs(t, err, style.ErrUnknownCategory)
}

func TestDefinition_Render(t *testing.T) {
	def, err := style.Lookup(style.Architecture)
	require.NoError(t, err)

	assert.Equal(t,
		"architectural style glass pavilion . clean lines, geometric shapes, minimalist, modern, architectural drawing, highly detailed",
		def.Render("glass pavilion"),
	)
}
