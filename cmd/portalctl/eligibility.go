package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"schemeportal/internal/eligibility"
	"schemeportal/internal/eligibility/models"
	schememodels "schemeportal/internal/scheme/models"
)

const apiTimeout = 10 * time.Second

func eligibilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eligibility",
		Short: "Evaluate citizen profiles against schemes",
	}
	cmd.AddCommand(checkEligibilityCmd())
	return cmd
}

func checkEligibilityCmd() *cobra.Command {
	var (
		profilePath string
		schemesPath string
		asJSON      bool
		input       models.ProfileInput
		age         int
		income      float64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check which schemes a profile qualifies for",
		Long: `Evaluate a profile against every scheme in a catalog and print the verdict
with the reasons for each failed criterion.

The profile comes from --profile (a JSON file) or from the individual flags.
The catalog comes from --schemes (a JSON file holding an array of schemes or
the body of GET /schemes) or, when --schemes is empty, from the API at
api.url (PORTAL_API_URL).`,
		Example: `  portalctl eligibility check --age 67 --residence rural --income 80000 --occupation retired
  portalctl eligibility check --profile citizen.json --schemes catalog.json --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if profilePath != "" {
				raw, err := os.ReadFile(profilePath)
				if err != nil {
					return fmt.Errorf("failed to read profile: %w", err)
				}
				input = models.ProfileInput{}
				if err := json.Unmarshal(raw, &input); err != nil {
					return fmt.Errorf("failed to parse profile: %w", err)
				}
			} else {
				if cmd.Flags().Changed("age") {
					input.Age = &age
				}
				if cmd.Flags().Changed("income") {
					input.AnnualIncome = &income
				}
			}
			input.Normalize()
			if err := input.Validate(); err != nil {
				return fmt.Errorf("invalid profile: %w", err)
			}

			schemes, err := loadSchemes(ctx, schemesPath, viper.GetString("api.url"))
			if err != nil {
				return err
			}

			results := eligibility.Evaluate(input.ToProfile(), schememodels.Refs(usableSchemes(schemes)))
			results = eligibility.NewFormatter(localeTag(viper.GetString("locale"))).Render(results)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "JSON file holding the profile")
	cmd.Flags().StringVar(&schemesPath, "schemes", "", "JSON file holding the scheme catalog")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().Float64Var(&income, "income", 0, "annual income")
	cmd.Flags().StringVar((*string)(&input.Residence), "residence", "", "urban or rural")
	cmd.Flags().StringVar((*string)(&input.Occupation), "occupation", "", "farmer, student, employed, unemployed, entrepreneur or retired")
	cmd.Flags().StringVar((*string)(&input.Gender), "gender", "", "male, female or other")
	cmd.Flags().StringVar((*string)(&input.Category), "category", "", "general, sc, st, obc or minority")
	cmd.Flags().StringVar(&input.State, "state", "", "state of residence")
	cmd.Flags().BoolVar(&input.DisabilityStatus, "disability", false, "the citizen has a disability")
	cmd.MarkFlagsMutuallyExclusive("profile", "age")

	cmd.Flags().String("api-url", "", "portal API base URL (overrides api.url)")
	_ = viper.BindPFlag("api.url", cmd.Flags().Lookup("api-url"))

	return cmd
}

// loadSchemes reads the catalog from path, or from the API when path is empty.
func loadSchemes(ctx context.Context, path, apiURL string) ([]*schememodels.Scheme, error) {
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read schemes: %w", err)
		}
		return decodeSchemes(raw)
	}
	if apiURL == "" {
		return nil, fmt.Errorf("no scheme catalog: pass --schemes or set api.url")
	}

	ctx, cancel := context.WithTimeout(ctx, apiTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(apiURL, "/")+"/schemes", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schemes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch schemes: %s", resp.Status)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read schemes: %w", err)
	}
	return decodeSchemes(raw)
}

// decodeSchemes accepts a bare array or the {"schemes": [...]} listing body.
func decodeSchemes(raw []byte) ([]*schememodels.Scheme, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var schemes []*schememodels.Scheme
		if err := json.Unmarshal(raw, &schemes); err != nil {
			return nil, fmt.Errorf("failed to parse schemes: %w", err)
		}
		return schemes, nil
	}
	var listing struct {
		Schemes []*schememodels.Scheme `json:"schemes"`
	}
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse schemes: %w", err)
	}
	return listing.Schemes, nil
}

// usableSchemes drops schemes whose criteria could never be satisfied
// consistently, logging each one.
func usableSchemes(schemes []*schememodels.Scheme) []*schememodels.Scheme {
	out := make([]*schememodels.Scheme, 0, len(schemes))
	for _, s := range schemes {
		if s == nil {
			continue
		}
		if err := eligibility.ValidateCriteria(s.Criteria); err != nil {
			slog.Warn("skipping scheme with invalid criteria", "scheme", s.Name, "error", err)
			continue
		}
		out = append(out, s)
	}
	return out
}

func localeTag(s string) language.Tag {
	tag, err := language.Parse(s)
	if err != nil {
		return eligibility.DefaultLocale
	}
	return tag
}

func printResults(out io.Writer, results []models.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tSTATUS\tREASONS")
	eligible := 0
	for _, r := range results {
		if r.Eligible() {
			eligible++
		}
		reasons := strings.Join(r.Reasons, "; ")
		if reasons == "" {
			reasons = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.SchemeName, r.Status, reasons)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\n%d of %d schemes eligible\n", eligible, len(results))
	return err
}
