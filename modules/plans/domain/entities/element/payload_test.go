package element_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irrigodev/irrigationdesign/modules/plans/domain/entities/element"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		shapeType element.ShapeType
		data      map[string]any
		badFields []string
	}{
		{
			name:      "rectangle ok",
			shapeType: element.ShapeRectangle,
			data:      map[string]any{"bounds": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}}},
		},
		{
			name:      "rectangle missing bounds",
			shapeType: element.ShapeRectangle,
			data:      map[string]any{"color": "red"},
			badFields: []string{"bounds"},
		},
		{
			name:      "circle ok",
			shapeType: element.ShapeCircle,
			data:      map[string]any{"center": []any{0.0, 0.0}, "radius": 2.0},
		},
		{
			name:      "circle missing radius",
			shapeType: element.ShapeCircle,
			data:      map[string]any{"center": []any{0.0, 0.0}},
			badFields: []string{"radius"},
		},
		{
			name:      "half circle missing angles",
			shapeType: element.ShapeHalfCircle,
			data:      map[string]any{"center": []any{0.0, 0.0}, "radius": 2.0},
			badFields: []string{"start_angle", "end_angle"},
		},
		{
			name:      "line ok",
			shapeType: element.ShapeLine,
			data:      map[string]any{"points": []any{[]any{0.0, 0.0}, []any{1.0, 1.0}}},
		},
		{
			name:      "text missing content",
			shapeType: element.ShapeText,
			data:      map[string]any{"position": []any{0.0, 0.0}},
			badFields: []string{"content"},
		},
		{
			name:      "empty payload",
			shapeType: element.ShapeCircle,
			data:      nil,
			badFields: []string{"data"},
		},
		{
			name:      "explicit null field counts as missing",
			shapeType: element.ShapeCircle,
			data:      map[string]any{"center": []any{0.0, 0.0}, "radius": nil},
			badFields: []string{"radius"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := element.ValidatePayload(tc.shapeType, tc.data)
			if len(tc.badFields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verrs serrors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			for _, field := range tc.badFields {
				assert.Contains(t, verrs, field)
			}
		})
	}
}

func TestValidatePayload_UnknownType(t *testing.T) {
	t.Parallel()

	err := element.ValidatePayload("TRIANGLE", map[string]any{"points": []any{}})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "type")
}

func TestEnsureStyle(t *testing.T) {
	t.Parallel()

	data := element.EnsureStyle(map[string]any{"radius": 1.0})
	require.Contains(t, data, "style")
	assert.Equal(t, element.DefaultStyle(), data["style"])

	custom := map[string]any{"style": map[string]any{"fillColor": "#00FF00"}}
	kept := element.EnsureStyle(custom)
	assert.Equal(t, map[string]any{"fillColor": "#00FF00"}, kept["style"])
}

func TestComputeArea(t *testing.T) {
	t.Parallel()

	rect := element.ComputeArea(element.ShapeRectangle, map[string]any{
		"bounds": []any{[]any{0.0, 0.0}, []any{2.0, 3.0}},
	})
	require.NotNil(t, rect)
	assert.InDelta(t, 6.0, *rect, 1e-9)

	circle := element.ComputeArea(element.ShapeCircle, map[string]any{"radius": 2.0})
	require.NotNil(t, circle)
	assert.InDelta(t, 4*math.Pi, *circle, 1e-9)

	half := element.ComputeArea(element.ShapeHalfCircle, map[string]any{
		"radius": 2.0, "start_angle": 0.0, "end_angle": 180.0,
	})
	require.NotNil(t, half)
	assert.InDelta(t, 2*math.Pi, *half, 1e-9)

	assert.Nil(t, element.ComputeArea(element.ShapeLine, map[string]any{"points": []any{}}))
	assert.Nil(t, element.ComputeArea(element.ShapeText, map[string]any{"position": []any{}}))
	assert.Nil(t, element.ComputeArea(element.ShapeCircle, map[string]any{"radius": "broken"}))
}
