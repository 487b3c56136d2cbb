package main

import (
	"flag"
	"reflect"
	"testing"
)

func newFlags() (*flag.FlagSet, *string, *bool) {
	fs := flag.NewFlagSet("oddsconv", flag.ContinueOnError)
	to := fs.String("to", "decimal", "")
	all := fs.Bool("all", false, "")
	return fs, to, all
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantFlags  []string
		wantPrices []string
	}{
		{"Leading favorite", []string{"-110", "2.10"}, nil, []string{"-110", "2.10"}},
		{"Flag value then favorite", []string{"-to", "moneyline", "-200"}, []string{"-to", "moneyline"}, []string{"-200"}},
		{"Equals form", []string{"--to=uk", "-150", "+150"}, []string{"--to=uk"}, []string{"-150", "+150"}},
		{"Bool flag takes no value", []string{"-all", "-110"}, []string{"-all"}, []string{"-110"}},
		{"Negative decimal point", []string{"-.5"}, nil, []string{"-.5"}},
		{"Double dash", []string{"-all", "--", "-x", "-to"}, []string{"-all"}, []string{"-x", "-to"}},
		{"Lone dash is a price", []string{"-"}, nil, []string{"-"}},
		{"Mixed order", []string{"6/5", "-to", "fractional", "-250"}, []string{"-to", "fractional"}, []string{"6/5", "-250"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs, _, _ := newFlags()
			flags, prices := splitArgs(fs, tt.args)
			if !reflect.DeepEqual(flags, tt.wantFlags) {
				t.Errorf("flags = %q, want %q", flags, tt.wantFlags)
			}
			if !reflect.DeepEqual(prices, tt.wantPrices) {
				t.Errorf("prices = %q, want %q", prices, tt.wantPrices)
			}
		})
	}
}

func TestSplitArgsParses(t *testing.T) {
	fs, to, all := newFlags()
	flags, prices := splitArgs(fs, []string{"-to", "moneyline", "-all", "-200", "-110"})

	if err := fs.Parse(flags); err != nil {
		t.Fatalf("Parse(%q): %v", flags, err)
	}
	if *to != "moneyline" || !*all {
		t.Errorf("to = %q, all = %v", *to, *all)
	}
	if len(fs.Args()) != 0 {
		t.Errorf("unexpected leftover args %q", fs.Args())
	}
	if !reflect.DeepEqual(prices, []string{"-200", "-110"}) {
		t.Errorf("prices = %q", prices)
	}
}
