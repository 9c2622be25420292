package estimate

import (
	"encoding/json"
	"math"
	"strconv"
)

// jsonFloat encodes like float64, except that non-finite values become the
// strings "+Inf", "-Inf" and "NaN", which encoding/json rejects as numbers.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	x := float64(f)
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return json.Marshal(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return json.Marshal(x)
}

// JSONValue returns a Report.Value that encoding/json can always marshal.
// Non-finite float64 values are replaced by their string form.
func JSONValue(v any) any {
	if x, ok := v.(float64); ok {
		return jsonFloat(x)
	}
	return v
}

// MarshalJSON encodes s, writing non-finite statistics as strings.
func (s Summary) MarshalJSON() ([]byte, error) {
	var skew, kurt *jsonFloat
	if s.Skewness != nil {
		v := jsonFloat(*s.Skewness)
		skew = &v
	}
	if s.Kurtosis != nil {
		v := jsonFloat(*s.Kurtosis)
		kurt = &v
	}
	return json.Marshal(struct {
		Iterations int        `json:"iterations"`
		Survivors  int        `json:"survivors"`
		Mean       jsonFloat  `json:"mean"`
		Variance   jsonFloat  `json:"variance"`
		StdDev     jsonFloat  `json:"std_dev"`
		Min        jsonFloat  `json:"min"`
		Max        jsonFloat  `json:"max"`
		Skewness   *jsonFloat `json:"skewness,omitempty"`
		Kurtosis   *jsonFloat `json:"kurtosis,omitempty"`
	}{
		Iterations: s.Iterations,
		Survivors:  s.Survivors,
		Mean:       jsonFloat(s.Mean),
		Variance:   jsonFloat(s.Variance),
		StdDev:     jsonFloat(s.StdDev),
		Min:        jsonFloat(s.Min),
		Max:        jsonFloat(s.Max),
		Skewness:   skew,
		Kurtosis:   kurt,
	})
}
