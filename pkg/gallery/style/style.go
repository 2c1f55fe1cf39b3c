package style

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCategory = errors.New("unknown category")

const promptMarker = "{prompt}"

type Category int

const (
	Automotive Category = iota
	InteriorDesign
	Architecture
	FoodPhotography
	Fashion
	Minimalism
	TiltShiftPhotography
	Graffiti

	categoryCount
)

type Definition struct {
	// Name is the style preset name, also used as the display name.
	Name           string
	Prompt         string
	NegativePrompt string
}

var categoryNames = [categoryCount]string{
	Automotive:           "automotive",
	InteriorDesign:       "interior design",
	Architecture:         "architecture",
	FoodPhotography:      "food photography",
	Fashion:              "fashion",
	Minimalism:           "minimalism",
	TiltShiftPhotography: "tilt shift photography",
	Graffiti:             "graffiti",
}

var definitions = [categoryCount]Definition{
	Automotive: {
		Name:           "ads-automotive",
		Prompt:         "automotive advertisement style {prompt} . sleek, dynamic, professional, commercial, vehicle-focused, high-resolution, highly detailed",
		NegativePrompt: "noisy, blurry, unattractive, sloppy, unprofessional",
	},
	InteriorDesign: {
		Name:           "ads-real estate",
		Prompt:         "real estate photography style {prompt} . professional, inviting, well-lit, high-resolution, property-focused, commercial, highly detailed",
		NegativePrompt: "dark, blurry, unappealing, noisy, unprofessional",
	},
	Architecture: {
		Name:           "misc-architectural",
		Prompt:         "architectural style {prompt} . clean lines, geometric shapes, minimalist, modern, architectural drawing, highly detailed",
		NegativePrompt: "curved lines, ornate, baroque, abstract, grunge",
	},
	FoodPhotography: {
		Name:           "ads-gourmet food photography",
		Prompt:         "gourmet food photo of {prompt} . soft natural lighting, macro details, vibrant colors, fresh ingredients, glistening textures, bokeh background, styled plating, wooden tabletop, garnished, tantalizing, editorial quality",
		NegativePrompt: "cartoon, anime, sketch, grayscale, dull, overexposed, cluttered, messy plate, deformed",
	},
	Fashion: {
		Name:           "ads-fashion editorial",
		Prompt:         "fashion editorial style {prompt} . high fashion, trendy, stylish, editorial, magazine style, professional, highly detailed",
		NegativePrompt: "outdated, blurry, noisy, unattractive, sloppy",
	},
	Minimalism: {
		Name:           "misc-minimalist",
		Prompt:         "minimalist style {prompt} . simple, clean, uncluttered, modern, elegant",
		NegativePrompt: "ornate, complicated, highly detailed, cluttered, disordered, messy, noisy",
	},
	TiltShiftPhotography: {
		Name:           "photo-tilt-shift",
		Prompt:         "tilt-shift photo of {prompt} . selective focus, miniature effect, blurred background, highly detailed, vibrant, perspective control",
		NegativePrompt: "blurry, noisy, deformed, flat, low contrast, unrealistic, oversaturated, underexposed",
	},
	Graffiti: {
		Name:           "artstyle-graffiti",
		Prompt:         "graffiti style {prompt} . street art, vibrant, urban, detailed, tag, mural",
		NegativePrompt: "ugly, deformed, noisy, blurry, low contrast, realism, photorealistic",
	},
}

// All returns every category in the order the page offers them.
func All() []Category {
	categories := make([]Category, 0, categoryCount)
	for c := Category(0); c < categoryCount; c++ {
		categories = append(categories, c)
	}
	return categories
}

func (c Category) Valid() bool {
	return c >= 0 && c < categoryCount
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func Lookup(c Category) (Definition, error) {
	if !c.Valid() {
		return Definition{}, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return definitions[c], nil
}

func Parse(name string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for c, n := range categoryNames {
		if n == normalized {
			return Category(c), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// ParseAll parses every name, failing on the first unknown one.
func ParseAll(names []string) ([]Category, error) {
	categories := make([]Category, 0, len(names))
	for _, name := range names {
		c, err := Parse(name)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// Dedupe drops repeated categories, keeping the first occurrence of each.
func Dedupe(categories []Category) []Category {
	seen := make(map[Category]bool, len(categories))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Render substitutes phrase into the prompt template.
func (d Definition) Render(phrase string) string {
	return strings.Replace(d.Prompt, promptMarker, phrase, 1)
}
