package filter

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestHalfWidth(t *testing.T) {
	tests := []struct {
		sigma float64
		want  int
	}{
		{0.1, 1},
		{0.5, 2},
		{1, 3},
		{1.5, 5},
		{2, 6},
		{3.2, 10},
	}
	for _, tt := range tests {
		if got := HalfWidth(tt.sigma); got != tt.want {
			t.Errorf("HalfWidth(%v) = %d, want %d", tt.sigma, got, tt.want)
		}
	}
}

func TestNewKernelsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		sigma   float64
		h       int
		opts    []KernelOption
		wantErr error
	}{
		{"zero sigma", 0, 3, nil, ErrInvalidSigma},
		{"negative sigma", -1, 3, nil, ErrInvalidSigma},
		{"NaN sigma", math.NaN(), 3, nil, ErrInvalidSigma},
		{"infinite sigma", math.Inf(1), 3, nil, ErrInvalidSigma},
		{"zero half-width", 1, 0, nil, ErrInvalidHalfWidth},
		{"accumulator too wide", 1, 3, []KernelOption{WithAccumulatorBits(64)}, ErrInvalidBits},
		{"zero sample bits", 1, 3, []KernelOption{WithSampleBits(0)}, ErrInvalidBits},
		{"samples fill accumulator", 1, 3, []KernelOption{WithSampleBits(32)}, ErrInvalidBits},
		{"no headroom", 1, 3, []KernelOption{WithSampleBits(31)}, ErrOverflow},
		{"sigma far too small", 1e-3, 1, nil, ErrOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKernels(tt.sigma, tt.h, tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewKernels() error = %v, wantErr %v", err, tt.wantErr)
			}
			if k != nil {
				t.Errorf("NewKernels() = %v, want nil on error", k)
			}
		})
	}
}

func TestKernelTaps(t *testing.T) {
	k, err := NewKernels(1, 3)
	if err != nil {
		t.Fatalf("NewKernels() error = %v", err)
	}

	p1, p2 := k.Path(0), k.Path(1)
	if len(p1.Horizontal) != 7 || len(p1.Vertical) != 7 {
		t.Fatalf("tap count = (%d, %d), want 7", len(p1.Horizontal), len(p1.Vertical))
	}

	// h11 = h22 and h12 = h21.
	if diff := cmp.Diff(p1.Horizontal, p2.Vertical); diff != "" {
		t.Errorf("h11 != h22 (-h11 +h22):\n%s", diff)
	}
	if diff := cmp.Diff(p1.Vertical, p2.Horizontal); diff != "" {
		t.Errorf("h12 != h21 (-h12 +h21):\n%s", diff)
	}

	gauss, deriv := p1.Vertical, p1.Horizontal
	if gauss[3] != 1 {
		t.Errorf("gauss[0] = %v, want 1", gauss[3])
	}
	if want := -1 / (2 * math.Pi); math.Abs(deriv[3]-want) > 1e-15 {
		t.Errorf("deriv[0] = %v, want %v", deriv[3], want)
	}
	// (l² - σ²) vanishes at |l| = σ.
	if deriv[2] != 0 || deriv[4] != 0 {
		t.Errorf("deriv[±1] = (%v, %v), want 0", deriv[2], deriv[4])
	}
	if want := 3 / (2 * math.Pi) * math.Exp(-2); math.Abs(deriv[5]-want) > 1e-15 {
		t.Errorf("deriv[2] = %v, want %v", deriv[5], want)
	}

	for _, taps := range [][]float64{gauss, deriv} {
		rev := slices.Clone(taps)
		slices.Reverse(rev)
		if diff := cmp.Diff(taps, rev); diff != "" {
			t.Errorf("taps not symmetric (-taps +reversed):\n%s", diff)
		}
	}
}

func TestKernelShift(t *testing.T) {
	tests := []struct {
		sigma       float64
		wantNominal int
		wantShift   int
		wantGain    float64
	}{
		{0.5, 22, 21, 5.579826},
		{1, 24, 22, 1.186153},
		{1.5, 25, 22, 0.544287},
		{2, 26, 21, 0.305917},
		{3, 27, 21, 0.136578},
	}

	for _, tt := range tests {
		k, err := NewKernels(tt.sigma, HalfWidth(tt.sigma))
		if err != nil {
			t.Fatalf("NewKernels(%v) error = %v", tt.sigma, err)
		}
		if math.Abs(k.Gain()-tt.wantGain) > 1e-5 {
			t.Errorf("sigma %v: Gain() = %v, want %v", tt.sigma, k.Gain(), tt.wantGain)
		}
		if k.NominalShift() != tt.wantNominal {
			t.Errorf("sigma %v: NominalShift() = %d, want %d", tt.sigma, k.NominalShift(), tt.wantNominal)
		}
		if k.Shift() != tt.wantShift {
			t.Errorf("sigma %v: Shift() = %d, want %d", tt.sigma, k.Shift(), tt.wantShift)
		}
	}
}

func TestKernelQuantizationError(t *testing.T) {
	for _, sigma := range []float64{0.5, 0.8, 1, 1.7, 2.5, 4} {
		k, err := NewKernels(sigma, HalfWidth(sigma))
		if err != nil {
			t.Fatalf("NewKernels(%v) error = %v", sigma, err)
		}
		step := math.Ldexp(1, -k.Shift())
		for i := range 2 {
			fp, ip := k.Path(i), k.IntPath(i)
			pairs := [][2]any{{fp.Horizontal, ip.Horizontal}, {fp.Vertical, ip.Vertical}}
			for _, pair := range pairs {
				floats, ints := pair[0].([]float64), pair[1].([]int32)
				for j := range floats {
					back := float64(ints[j]) * step
					if math.Abs(back-floats[j]) > step {
						t.Errorf("sigma %v path %d tap %d: %d * 2^-%d = %v, float %v",
							sigma, i, j, ints[j], k.Shift(), back, floats[j])
					}
				}
			}
		}
	}
}

// worstCase returns the largest accumulator magnitude either stage of p can
// reach for samples in [-peak, peak].
func worstCase(p IntPath, shift int, peak int64) (stage1, stage2 int64) {
	var sa, sb int64
	for _, v := range p.Horizontal {
		sa += max(int64(v), -int64(v))
	}
	for _, v := range p.Vertical {
		sb += max(int64(v), -int64(v))
	}
	stage1 = peak * sa
	inter := -((-stage1) >> shift)
	return stage1, inter * sb
}

func TestKernelOverflowSafety(t *testing.T) {
	for _, sigma := range []float64{0.3, 0.5, 1, 1.5, 2, 3, 5, 8} {
		k, err := NewKernels(sigma, HalfWidth(sigma))
		if err != nil {
			t.Fatalf("NewKernels(%v) error = %v", sigma, err)
		}
		if k.Shift() > k.NominalShift() {
			t.Errorf("sigma %v: Shift() = %d above nominal %d", sigma, k.Shift(), k.NominalShift())
		}
		for i := range 2 {
			s1, s2 := worstCase(k.IntPath(i), k.Shift(), 128)
			if s1 > math.MaxInt32 || s2 > math.MaxInt32 {
				t.Errorf("sigma %v path %d: worst case (%d, %d) exceeds int32", sigma, i, s1, s2)
			}
		}
		// The next larger shift must not fit, or the nominal one was used.
		if k.Shift() < k.NominalShift() {
			scale := math.Ldexp(1, k.Shift()+1)
			var fixed [2][2][]float64
			for i := range 2 {
				fixed[i][0] = roundTaps(k.Path(i).Horizontal, scale)
				fixed[i][1] = roundTaps(k.Path(i).Vertical, scale)
			}
			if k.fits(fixed, k.Shift()+1) {
				t.Errorf("sigma %v: shift %d also fits, chosen %d", sigma, k.Shift()+1, k.Shift())
			}
		}
	}
}

func TestKernelAccumulatorBits(t *testing.T) {
	k16, err := NewKernels(1, 3, WithAccumulatorBits(16))
	if err != nil {
		t.Fatalf("NewKernels(16-bit) error = %v", err)
	}
	k32, _ := NewKernels(1, 3)
	if k16.Shift() >= k32.Shift() {
		t.Errorf("16-bit Shift() = %d, want below 32-bit %d", k16.Shift(), k32.Shift())
	}
	for i := range 2 {
		s1, s2 := worstCase(k16.IntPath(i), k16.Shift(), 128)
		if s1 > math.MaxInt16 || s2 > math.MaxInt16 {
			t.Errorf("path %d: worst case (%d, %d) exceeds int16", i, s1, s2)
		}
	}

	k10, err := NewKernels(1, 3, WithSampleBits(10))
	if err != nil {
		t.Fatalf("NewKernels(10-bit samples) error = %v", err)
	}
	if k10.LevelOffset() != 512 || k10.MaxSample() != 1023 {
		t.Errorf("10-bit offset/max = (%v, %v), want (512, 1023)", k10.LevelOffset(), k10.MaxSample())
	}
}

func TestKernelResponse(t *testing.T) {
	k, _ := NewKernels(1.2, 4)
	resp := k.Response()

	r, c := resp.Dims()
	if r != 9 || c != 9 {
		t.Fatalf("Response().Dims() = (%d, %d), want (9, 9)", r, c)
	}

	p1, p2 := k.Path(0), k.Path(1)
	gain := 0.0
	for row := range 9 {
		for col := range 9 {
			want := p1.Horizontal[col]*p1.Vertical[row] + p2.Horizontal[col]*p2.Vertical[row]
			if math.Abs(resp.At(row, col)-want) > 1e-15 {
				t.Errorf("Response(%d, %d) = %v, want %v", row, col, resp.At(row, col), want)
			}
			if math.Abs(resp.At(row, col)-resp.At(col, row)) > 1e-15 {
				t.Errorf("Response not symmetric at (%d, %d)", row, col)
			}
			gain += math.Abs(p1.Horizontal[col]*p1.Vertical[row] - p2.Horizontal[col]*p2.Vertical[row])
		}
	}
	if math.Abs(gain-k.Gain()) > 1e-12 {
		t.Errorf("Gain() = %v, want %v", k.Gain(), gain)
	}

	// Response returns a copy.
	resp.Set(0, 0, 42)
	if k.Response().At(0, 0) == 42 {
		t.Error("Response() exposes internal matrix")
	}
}

func TestKernelDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if _, err := NewKernels(1, 3, WithKernelLogger(l)); err != nil {
		t.Fatalf("NewKernels() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"LoG float taps", "LoG fixed-point taps", "shift=22", "h22="} {
		if !strings.Contains(out, want) {
			t.Errorf("debug output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	_, _ = NewKernels(1, 3, WithKernelLogger(quiet))
	if buf.Len() != 0 {
		t.Errorf("info-level logger received output: %s", buf.String())
	}
}

func TestNominalShift(t *testing.T) {
	tests := []struct {
		name string
		gain float64
		want int
	}{
		{"unit gain", 1, 24},
		{"gain just under 2", 1.99, 24},
		{"gain 2", 2, 23},
		{"small gain", 0.3, 26},
		{"zero gain", 0, 31},
		{"NaN gain", math.NaN(), 31},
		{"tiny gain capped", 1e-30, 31},
		{"huge gain", 1e12, -15},
	}
	for _, tt := range tests {
		if got := nominalShift(tt.gain, 8, 32); got != tt.want {
			t.Errorf("%s: nominalShift(%v) = %d, want %d", tt.name, tt.gain, got, tt.want)
		}
	}
}

func TestIntPathsEquateFloatShape(t *testing.T) {
	k, _ := NewKernels(2, 6)
	step := math.Ldexp(1, -k.Shift())

	for i := range 2 {
		ip := k.IntPath(i)
		back := make([]float64, len(ip.Horizontal))
		for j, v := range ip.Horizontal {
			back[j] = float64(v) * step
		}
		if diff := cmp.Diff(k.Path(i).Horizontal, back, cmpopts.EquateApprox(0, step)); diff != "" {
			t.Errorf("path %d horizontal taps (-float +descaled):\n%s", i, diff)
		}
	}
}
