package position

import "testing"

func TestComputeScenarios(t *testing.T) {
	viewport := Size{W: 1024, H: 768}
	opts := DefaultOptions()

	tests := []struct {
		name    string
		target  Rect
		overlay Size
		want    Position
	}{
		{
			name:    "centered above",
			target:  Rect{X: 50, Y: 100, W: 200, H: 30},
			overlay: Size{W: 120, H: 40},
			want:    Position{Top: 52, Left: 90},
		},
		{
			name:    "flips below without room above",
			target:  Rect{X: 50, Y: 20, W: 200, H: 110},
			overlay: Size{W: 120, H: 40},
			want:    Position{Top: 138, Left: 90},
		},
		{
			name:    "flips below short target",
			target:  Rect{X: 50, Y: 20, W: 200, H: 30},
			overlay: Size{W: 120, H: 40},
			want:    Position{Top: 58, Left: 90},
		},
		{
			name:    "clamps at right edge",
			target:  Rect{X: 950, Y: 300, W: 60, H: 30},
			overlay: Size{W: 200, H: 40},
			want:    Position{Top: 252, Left: 808},
		},
		{
			name:    "clamps at left edge",
			target:  Rect{X: 0, Y: 300, W: 20, H: 30},
			overlay: Size{W: 200, H: 40},
			want:    Position{Top: 252, Left: 16},
		},
		{
			name:    "exact fit above",
			target:  Rect{X: 400, Y: 48, W: 100, H: 10},
			overlay: Size{W: 100, H: 40},
			want:    Position{Top: 0, Left: 400},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.target, tt.overlay, viewport, Point{}, opts)
			if got != tt.want {
				t.Errorf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeAddsScrollOffset(t *testing.T) {
	got := Compute(Rect{X: 50, Y: 100, W: 200, H: 30}, Size{W: 120, H: 40},
		Size{W: 1024, H: 768}, Point{X: 3, Y: 500}, DefaultOptions())
	want := Position{Top: 552, Left: 93}
	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
}

func TestComputeUsesFallbackForUnmeasuredOverlay(t *testing.T) {
	target := Rect{X: 400, Y: 300, W: 200, H: 30}
	got := Compute(target, Size{}, Size{W: 1024, H: 768}, Point{}, DefaultOptions())
	// 200x40 fallback: 300-40-8, 500-100
	want := Position{Top: 252, Left: 400}
	if got != want {
		t.Errorf("Compute() = %+v, want %+v", got, want)
	}
}

func TestComputeLeftAlwaysClamped(t *testing.T) {
	opts := DefaultOptions()
	viewport := Size{W: 300, H: 200}
	for w := 1; w <= viewport.W-2*opts.Padding; w += 7 {
		for x := -50; x <= 400; x += 13 {
			target := Rect{X: x, Y: 100, W: 17, H: 3}
			got := Compute(target, Size{W: w, H: 5}, viewport, Point{}, opts)
			if got.Left < opts.Padding || got.Left > viewport.W-w-opts.Padding {
				t.Fatalf("overlay %d at target x=%d: left %d outside [%d, %d]",
					w, x, got.Left, opts.Padding, viewport.W-w-opts.Padding)
			}
		}
	}
}

func TestComputeOverlayWiderThanViewport(t *testing.T) {
	got := Compute(Rect{X: 10, Y: 100, W: 10, H: 1}, Size{W: 500, H: 1}, Size{W: 100, H: 50}, Point{}, DefaultOptions())
	if got.Left != 16 {
		t.Errorf("Left = %d, want padding 16", got.Left)
	}
}

func TestComputeModal(t *testing.T) {
	opts := DefaultOptions()
	viewport := Size{W: 1024, H: 768}

	tests := []struct {
		name    string
		trigger Rect
		overlay Size
		want    Position
	}{
		{
			name:    "below trigger",
			trigger: Rect{X: 100, Y: 100, W: 30, H: 30},
			overlay: Size{W: 300, H: 200},
			want:    Position{Top: 138, Left: 100},
		},
		{
			name:    "flips above near bottom",
			trigger: Rect{X: 100, Y: 600, W: 30, H: 30},
			overlay: Size{W: 300, H: 200},
			want:    Position{Top: 392, Left: 100},
		},
		{
			name:    "stays below when neither side fits",
			trigger: Rect{X: 100, Y: 100, W: 30, H: 30},
			overlay: Size{W: 300, H: 700},
			want:    Position{Top: 138, Left: 100},
		},
		{
			name:    "clamps right edge",
			trigger: Rect{X: 900, Y: 100, W: 30, H: 30},
			overlay: Size{W: 300, H: 200},
			want:    Position{Top: 138, Left: 708},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeModal(tt.trigger, tt.overlay, viewport, Point{}, opts)
			if got != tt.want {
				t.Errorf("ComputeModal() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestOffscreenIsNotVisible(t *testing.T) {
	if Offscreen.Visible() {
		t.Error("Offscreen must not be a visible placement")
	}
	if !(Position{}).Visible() {
		t.Error("origin is a valid placement")
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, W: 20, H: 10}

	cases := []struct {
		x, y     int
		expected bool
	}{
		{10, 10, true},
		{29, 19, true},
		{30, 10, false},
		{10, 20, false},
		{9, 15, false},
	}

	for _, tc := range cases {
		if got := r.Contains(Point{X: tc.x, Y: tc.y}); got != tc.expected {
			t.Errorf("Rect(%+v).Contains(%d, %d) = %v, want %v", r, tc.x, tc.y, got, tc.expected)
		}
	}
}
