// Package flagx lets several loaders share one command line: each picks out
// the flags it owns and parses only those.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the arguments of args that belong to allowed flags,
// keeping their order. Both "-f value" and "-f=value" are recognized. A
// flag listed in boolFlags never consumes the following argument.
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	known := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		known[f] = true
	}
	noValue := make(map[string]bool, len(boolFlags))
	for _, f := range boolFlags {
		noValue[f] = true
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if known[name] {
				filtered = append(filtered, arg)
			}
			continue
		}

		if !known[arg] {
			continue
		}
		filtered = append(filtered, arg)
		if noValue[arg] {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}
	return filtered
}

// Names lists every flag defined on fs in both "-name" and "--name" form.
func Names(fs *flag.FlagSet) (all []string, bools []string) {
	fs.VisitAll(func(f *flag.Flag) {
		forms := []string{"-" + f.Name, "--" + f.Name}
		all = append(all, forms...)
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			bools = append(bools, forms...)
		}
	})
	return all, bools
}

func stringFlag(args []string, usage string, names ...string) string {
	var v string
	fs := flag.NewFlagSet("flagx", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&v, n, "", usage)
	}
	all, _ := Names(fs)
	_ = fs.Parse(FilterArgs(args, all))
	return v
}

// ConfigFile returns the path given with -c or -config, or "".
func ConfigFile(args []string) string {
	return stringFlag(args, "path to config file", "c", "config")
}

// EnvFile returns the path given with -env, or "".
func EnvFile(args []string) string {
	return stringFlag(args, "path to .env file", "env")
}
