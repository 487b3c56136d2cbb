package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"sports-odds-display/internal/odds"
)

func main() {
	to := flag.String("to", string(odds.DefaultNotation), "output notation: moneyline, decimal or fractional")
	all := flag.Bool("all", false, "print every notation")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: oddsconv [-to notation] [-all] [--] odds...\n\n")
		fmt.Fprintf(os.Stderr, "examples: oddsconv -to fractional -110 +150 2.10 6/5\n")
		fmt.Fprintf(os.Stderr, "          oddsconv -all -- -200\n\n")
		flag.PrintDefaults()
	}

	flagArgs, args := splitArgs(flag.CommandLine, os.Args[1:])
	flag.CommandLine.Parse(flagArgs)
	args = append(flag.Args(), args...)

	target, err := odds.ParseNotation(*to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	for _, raw := range args {
		res := odds.Resolve(raw)

		detected := string(res.Detected)
		if res.Fallback {
			detected = "unrecognised"
		}

		if *all {
			fmt.Printf("%-10s %-13s ML=%-6s DEC=%-6s FRAC=%s\n",
				raw, detected,
				odds.Format(res.Decimal, odds.NotationMoneyline),
				odds.Format(res.Decimal, odds.NotationDecimal),
				odds.Format(res.Decimal, odds.NotationFractional),
			)
			continue
		}
		fmt.Printf("%-10s %-13s %.4f  %s\n", raw, detected, res.Decimal, odds.Format(res.Decimal, target))
	}
}

// splitArgs separates flags from odds so a favorite such as -110 is read as
// a price rather than an unknown flag. Everything after "--" is a price.
// Flag values are kept next to their flag, in order.
func splitArgs(fs *flag.FlagSet, args []string) (flags, prices []string) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			return flags, append(prices, args[i+1:]...)
		case len(a) < 2 || a[0] != '-' || isSignedNumber(a):
			prices = append(prices, a)
		default:
			flags = append(flags, a)
			name := strings.TrimLeft(a, "-")
			if strings.Contains(name, "=") {
				continue
			}
			if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		}
	}
	return flags, prices
}

// isSignedNumber reports whether a looks like "-110" or "-.5" rather than a flag.
func isSignedNumber(a string) bool {
	if len(a) < 2 || a[0] != '-' {
		return false
	}
	c := a[1]
	return (c >= '0' && c <= '9') || c == '.'
}

func isBoolFlag(f *flag.Flag) bool {
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}
