package util

import "testing"

func TestIntValue(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{1, 1, true},
		{int64(7), 7, true},
		{float64(3), 3, true},
		{"1", 1, true},
		{" 42 ", 42, true},
		{"7.0", 7, true},
		{"pedestrian", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := IntValue(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("IntValue(%#v) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
