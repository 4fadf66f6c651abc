package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"schemeportal/internal/workflow"
	id "schemeportal/pkg/domain"
)

type ruleView struct {
	Role    id.Role         `json:"role"`
	From    workflow.Status `json:"from"`
	To      workflow.Status `json:"to"`
	Allowed bool            `json:"allowed"`
	NoOp    bool            `json:"no_op,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Notes   bool            `json:"requires_notes,omitempty"`
}

func newRuleView(r workflow.Rule) ruleView {
	v := ruleView{
		Role:    r.Role,
		From:    r.From,
		To:      r.To,
		Allowed: r.Decision.Allowed,
		NoOp:    r.Decision.NoOp,
		Code:    string(r.Decision.Code),
		Message: r.Decision.Message,
	}
	if v.Allowed {
		v.Notes = workflow.RequiresNotes(r.From, r.To)
	}
	return v
}

func workflowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Inspect the application review policy",
	}
	cmd.AddCommand(workflowTableCmd(), workflowCheckCmd())
	return cmd
}

func workflowTableCmd() *cobra.Command {
	var (
		role        string
		allowedOnly bool
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the decision for every role and status pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter id.Role
			if role != "" {
				parsed, err := id.ParseRole(role)
				if err != nil {
					return err
				}
				filter = parsed
			}

			views := []ruleView{}
			for _, rule := range workflow.Table() {
				if filter != "" && rule.Role != filter {
					continue
				}
				if allowedOnly && (!rule.Decision.Allowed || rule.Decision.NoOp) {
					continue
				}
				views = append(views, newRuleView(rule))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(views)
			}
			return printRules(cmd.OutOrStdout(), views)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "only show rules for this role")
	cmd.Flags().BoolVar(&allowedOnly, "allowed", false, "only show transitions that change status")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rules as JSON")
	return cmd
}

func workflowCheckCmd() *cobra.Command {
	var role, from, to string

	cmd := &cobra.Command{
		Use:     "check",
		Short:   "Decide a single transition",
		Example: "  portalctl workflow check --role analyst --from under_review --to approved",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := id.ParseRole(role)
			if err != nil {
				return err
			}
			current, err := workflow.ParseStatus(from)
			if err != nil {
				return err
			}
			target, err := workflow.ParseStatus(to)
			if err != nil {
				return err
			}

			v := newRuleView(workflow.Rule{Role: r, From: current, To: target, Decision: workflow.Check(r, current, target)})
			out := cmd.OutOrStdout()
			switch {
			case v.NoOp:
				fmt.Fprintf(out, "no-op: %s already %s\n", v.Role, v.From)
			case v.Allowed:
				fmt.Fprintf(out, "allowed: %s may move %s -> %s", v.Role, v.From, v.To)
				if v.Notes {
					fmt.Fprint(out, " (notes required)")
				}
				fmt.Fprintln(out)
			default:
				fmt.Fprintf(out, "denied (%s): %s\n", v.Code, v.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "actor role")
	cmd.Flags().StringVar(&from, "from", "", "current status")
	cmd.Flags().StringVar(&to, "to", "", "target status")
	_ = cmd.MarkFlagRequired("role")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func printRules(out io.Writer, views []ruleView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tFROM\tTO\tDECISION\tNOTES")
	for _, v := range views {
		decision := "allowed"
		switch {
		case v.NoOp:
			decision = "no-op"
		case !v.Allowed:
			decision = "denied: " + v.Code
		}
		notes := ""
		if v.Notes {
			notes = "required"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", v.Role, v.From, v.To, decision, notes)
	}
	return w.Flush()
}
