package element

import (
	"math"

	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

// requiredPayloadFields is the per-type contract for shape payloads. Only
// presence is checked; geometric sanity is the client's concern.
var requiredPayloadFields = map[ShapeType][]string{
	ShapeRectangle:  {"bounds"},
	ShapeCircle:     {"center", "radius"},
	ShapeHalfCircle: {"center", "radius", "start_angle", "end_angle"},
	ShapeLine:       {"points"},
	ShapeText:       {"position", "content"},
}

// ValidatePayload checks a shape's type-tagged payload. On failure it returns
// field-scoped validation errors; the caller decides the field prefix.
func ValidatePayload(t ShapeType, data map[string]any) error {
	if len(data) == 0 {
		return serrors.NewFieldRequiredError("data")
	}
	required, ok := requiredPayloadFields[t]
	if !ok {
		return serrors.NewFieldError("type", "unknown shape type")
	}
	errs := serrors.NewValidationErrors()
	for _, field := range required {
		if v, present := data[field]; !present || v == nil {
			errs.Add(field, "this field is required")
		}
	}
	if errs.Any() {
		return errs
	}
	return nil
}

// DefaultStyle is the display style applied to shapes that arrive without
// one.
func DefaultStyle() map[string]any {
	return map[string]any{
		"fillColor":    "#FFFFFF",
		"strokeWeight": 2,
		"opacity":      1,
	}
}

// EnsureStyle fills in the default style when the payload has none. The input
// map is returned for chaining; a nil map is replaced.
func EnsureStyle(data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["style"]; !ok {
		data["style"] = DefaultStyle()
	}
	return data
}

// ComputeArea derives the enclosed area for closed shapes. Open shapes have
// no area and yield nil, as does a payload whose numbers cannot be read.
func ComputeArea(t ShapeType, data map[string]any) *float64 {
	switch t {
	case ShapeRectangle:
		x1, y1, x2, y2, ok := boundsCorners(data["bounds"])
		if !ok {
			return nil
		}
		area := math.Abs((x2 - x1) * (y2 - y1))
		return &area
	case ShapeCircle:
		r, ok := asFloat(data["radius"])
		if !ok {
			return nil
		}
		area := math.Pi * r * r
		return &area
	case ShapeHalfCircle:
		r, ok := asFloat(data["radius"])
		if !ok {
			return nil
		}
		sweep := 180.0
		if start, ok1 := asFloat(data["start_angle"]); ok1 {
			if end, ok2 := asFloat(data["end_angle"]); ok2 {
				sweep = math.Mod(math.Abs(end-start), 360)
				if sweep == 0 {
					sweep = 360
				}
			}
		}
		area := math.Pi * r * r * sweep / 360
		return &area
	default:
		return nil
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// boundsCorners reads bounds shaped as [[x1,y1],[x2,y2]].
func boundsCorners(v any) (x1, y1, x2, y2 float64, ok bool) {
	pairs, isSlice := v.([]any)
	if !isSlice || len(pairs) != 2 {
		return 0, 0, 0, 0, false
	}
	read := func(p any) (float64, float64, bool) {
		pair, isPair := p.([]any)
		if !isPair || len(pair) != 2 {
			return 0, 0, false
		}
		a, ok1 := asFloat(pair[0])
		b, ok2 := asFloat(pair[1])
		return a, b, ok1 && ok2
	}
	x1, y1, ok = read(pairs[0])
	if !ok {
		return 0, 0, 0, 0, false
	}
	x2, y2, ok = read(pairs[1])
	if !ok {
		return 0, 0, 0, 0, false
	}
	return x1, y1, x2, y2, true
}
