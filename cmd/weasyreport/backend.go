package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	weasyreport "github.com/alnah/go-weasyreport"
)

// runBackend prints which backend would render each report with the current
// settings and installed engines.
func runBackend(args []string, env *Environment) error {
	flags, reports, err := parseBackendFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("%w: usage: weasyreport backend <report>...", ErrUsage)
	}

	a, err := newApp(*flags, env)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.reporter(env)
	if err != nil {
		return err
	}
	defer func() { _ = rep.Close() }()

	ctx := context.Background()
	resolver := weasyreport.NewMapResolver(a.cfg.Reports)

	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REPORT\tMODULE\tBACKEND")
	for _, ref := range reports {
		backend, err := rep.Backend(ctx, ref)
		if err != nil {
			return err
		}
		module, _ := resolver.ResolveModule(ctx, ref)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ref, module, backend)
	}
	return tw.Flush()
}
