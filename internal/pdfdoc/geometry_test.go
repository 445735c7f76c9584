package pdfdoc

import "testing"

func TestBoxSize(t *testing.T) {
	letter := [4]float64{0, 0, 612, 792}
	cases := []struct {
		box    [4]float64
		rotate int64
		w, h   float64
	}{
		{letter, 0, 612, 792},
		{letter, 90, 792, 612},
		{letter, 180, 612, 792},
		{letter, 270, 792, 612},
		{letter, -90, 792, 612},
		{letter, 450, 792, 612},
		{[4]float64{612, 792, 0, 0}, 0, 612, 792},
		{[4]float64{10, 20, 605.28, 861.89}, 0, 595.28, 841.89},
	}
	for _, tc := range cases {
		w, h := boxSize(tc.box, tc.rotate)
		if w != tc.w || h != tc.h {
			t.Errorf("boxSize(%v, %d) = %vx%v, want %vx%v", tc.box, tc.rotate, w, h, tc.w, tc.h)
		}
	}
}
