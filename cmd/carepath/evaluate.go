package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/warp/carepath/generic"
	"github.com/warp/carepath/subsidy"
)

type evaluateOptions struct {
	flags  string
	counts string
	units  int64
}

func newEvaluateCmd() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Determine the subsidy tier and annual estimate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.flags, "flags", "", "met career-path requirements, e.g. I,II,III")
	cmd.Flags().StringVar(&opts.counts, "counts", "0,0,0", "initiative counts: qualification,work_style,balance")
	cmd.Flags().Int64Var(&opts.units, "units", 0, "total annual service units")
	return cmd
}

func runEvaluate(out io.Writer, opts evaluateOptions) error {
	flags, err := subsidy.ParseFlags(opts.flags)
	if err != nil {
		return err
	}
	counts, err := parseCounts(opts.counts)
	if err != nil {
		return err
	}
	if opts.units < 0 {
		return generic.Invalid("units", "must be non-negative")
	}

	a := subsidy.Assess(flags, counts)
	est := subsidy.EstimateAnnualAmount(a.Tier, opts.units)

	fmt.Fprintf(out, "tier:      %s\n", a.Tier.Label())
	fmt.Fprintf(out, "rate:      %s%%\n", est.Rate.String())
	fmt.Fprintf(out, "estimate:  %s\n", est.Amount.Display())
	for _, r := range a.Requirements {
		fmt.Fprintf(out, "  %-4s %-24s %s\n", r.Requirement, r.Name, mark(r.Met))
	}
	for _, c := range a.Categories {
		fmt.Fprintf(out, "  %-24s %d/%d %s\n", c.Name, c.Count, c.Required, mark(c.Met))
	}
	return nil
}

// parseCounts reads "q,w,b" into InitiativeCounts.
func parseCounts(s string) (subsidy.InitiativeCounts, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return subsidy.InitiativeCounts{}, generic.Invalid("counts", "expected qualification,work_style,balance")
	}
	n := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return subsidy.InitiativeCounts{}, generic.Invalid("counts", fmt.Sprintf("not a number: %q", p))
		}
		n[i] = v
	}
	return subsidy.NewInitiativeCounts(n[0], n[1], n[2])
}

func mark(ok bool) string {
	if ok {
		return "○"
	}
	return "×"
}
