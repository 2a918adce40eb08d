package metrics

import (
	"math"
	"testing"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     []float64
		yPred     []float64
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     []float64{1.0, 2.0, 3.0, 4.0, 5.0},
			yPred:     []float64{1.0, 2.0, 3.0, 4.0, 5.0},
			want:      0.0,
			tolerance: 1e-10,
		},
		{
			name:      "simple case",
			yTrue:     []float64{1.0, 2.0, 3.0, 4.0},
			yPred:     []float64{1.5, 2.5, 2.5, 3.5},
			want:      0.25,
			tolerance: 1e-10,
		},
		{
			name:      "larger errors",
			yTrue:     []float64{10.0, 20.0, 30.0},
			yPred:     []float64{12.0, 18.0, 33.0},
			want:      17.0 / 3.0,
			tolerance: 1e-10,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []float64{1.0, 2.0, 3.0},
			yPred:   []float64{1.0, 2.0},
			wantErr: true,
		},
		{
			name:    "empty vectors",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("MSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("MSE() = %v, want %v (tolerance: %v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	got, err := RMSE([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-math.Sqrt(12.5)) > 1e-12 {
		t.Errorf("RMSE() = %v", got)
	}
}

func TestR2Score(t *testing.T) {
	got, err := R2Score([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 4})
	if err != nil || got != 1 {
		t.Errorf("R2Score(perfect) = %v, %v", got, err)
	}

	if _, err := R2Score([]float64{2, 2, 2}, []float64{1, 2, 3}); err == nil {
		t.Error("expected error for constant yTrue")
	}
}

func TestMSEAgainst(t *testing.T) {
	// deviations from 10 are -1, 1, 3
	got, err := MSEAgainst([]float64{9, 11, 13}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-11.0/3.0) > 1e-12 {
		t.Errorf("MSEAgainst() = %v, want %v", got, 11.0/3.0)
	}
	if _, err := MSEAgainst(nil, 0); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestSampleVariance(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single observation", []float64{4}, 0},
		{"n-1 denominator", []float64{1, 2, 3, 4}, 5.0 / 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleVariance(tt.xs)
			if math.IsNaN(got) || math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("SampleVariance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStandardError(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	want := math.Sqrt((5.0 / 3.0) / 4)
	if got := StandardError(xs); math.Abs(got-want) > 1e-12 {
		t.Errorf("StandardError() = %v, want %v", got, want)
	}
}

func TestMean(t *testing.T) {
	got, err := Mean([]float64{1, 2, 6})
	if err != nil || got != 3 {
		t.Errorf("Mean() = %v, %v", got, err)
	}
	if _, err := Mean(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestWeightedVariance(t *testing.T) {
	got, err := WeightedVariance([]float64{0, 2}, []float64{0.5, 0.5}, 1)
	if err != nil || math.Abs(got-1) > 1e-12 {
		t.Errorf("WeightedVariance() = %v, %v", got, err)
	}
	if _, err := WeightedVariance([]float64{1}, []float64{0.5, 0.5}, 0); err == nil {
		t.Error("expected dimension error")
	}
}
