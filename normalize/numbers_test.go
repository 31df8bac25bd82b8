package normalize

import "testing"

func TestExpandNumerals(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"small integer", "I have 3 dogs", "I have three dogs"},
		{"teens", "17 students", "seventeen students"},
		{"tens with hyphen", "42 reasons", "forty-two reasons"},
		{"round hundred", "about 300 people", "about three hundred people"},
		{"compound", "price was 12500", "price was twelve thousand five hundred"},
		{"zero", "0 results", "zero results"},
		{"year split", "back in 1975 it started", "back in nineteen seventy-five it started"},
		{"year two thousand", "the year 2000 bug", "the year two thousand bug"},
		{"year early aughts", "by 2008 sab badal gaya", "by two thousand eight sab badal gaya"},
		{"year twenty-teens", "2013 mein dono?", "twenty thirteen mein dono?"},
		{"year oh-five", "1905 was quiet", "nineteen oh five was quiet"},
		{"even century", "circa 1900", "circa nineteen hundred"},
		{"long number digitwise", "call 9876543", "call nine eight seven six five four three"},
		{"decimal", "pi is 3.14 roughly", "pi is three point one four roughly"},
		{"no digits untouched", "koi number nahi", "koi number nahi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandNumerals(tt.in); got != tt.want {
				t.Errorf("expandNumerals(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandNumeralsIdempotent(t *testing.T) {
	inputs := []string{
		"back in 1975, 2 friends made 3.5 crore",
		"2000 plus 2008 plus 9876543",
	}
	for _, in := range inputs {
		once := expandNumerals(in)
		twice := expandNumerals(once)
		if once != twice {
			t.Errorf("not idempotent:\n once: %q\ntwice: %q", once, twice)
		}
	}
}

func TestYearWordsBoundaries(t *testing.T) {
	tests := []struct {
		year int
		want string
	}{
		{2000, "two thousand"},
		{2001, "two thousand one"},
		{2009, "two thousand nine"},
		{2010, "twenty ten"},
		{2099, "twenty ninety-nine"},
		{1999, "nineteen ninety-nine"},
		{1900, "nineteen hundred"},
		{1901, "nineteen oh one"},
		{1500, "fifteen hundred"},
	}
	for _, tt := range tests {
		if got := yearWords(tt.year); got != tt.want {
			t.Errorf("yearWords(%d) = %q, want %q", tt.year, got, tt.want)
		}
	}
}
