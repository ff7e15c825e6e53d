// scorecard grades a ticket from the command line.
//
// Ratings are read from a JSONC file (or "-" for stdin) mapping criterion ids to an
// option index or "N/A":
//
//	{
//	  "communication": 2,   // Needs work
//	  "empathy": "N/A"
//	}
//
// The result is printed as a per-section table, or as JSON with --json.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/godilite/qa-scorecard/internal/presentation"
	"github.com/godilite/qa-scorecard/internal/rubrics"
	"github.com/godilite/qa-scorecard/internal/scorecard"
	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
)

type options struct {
	role             string
	variant          string
	scorecardVariant string
	ratingsPath      string
	catalogPath      string
	manualScore      int
	asJSON           bool
	listRoles        bool
	listVariants     bool
	verbose          bool
}

type report struct {
	Role           string                    `json:"role"`
	Variant        *string                   `json:"variant"`
	Score          *int                      `json:"score"`
	Mode           scorecard.ScoreMode       `json:"mode"`
	Status         scorecard.Status          `json:"status"`
	NeedsSelection bool                      `json:"needs_selection"`
	VariantLocked  bool                      `json:"variant_locked"`
	Sections       []scorecard.SectionResult `json:"sections"`
	ActiveWeight   int                       `json:"active_weight"`
	Ratings        map[string]ratingView     `json:"ratings"`
}

// ratingView is an effective rating with its display label and color class.
type ratingView struct {
	Value scorecard.Rating   `json:"value"`
	Label presentation.Label `json:"label"`
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("scorecard", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.role, "role", "r", "", "role whose rubric applies")
	flagSet.StringVarP(&opts.variant, "variant", "v", "", "rubric variant to use when the role has several")
	flagSet.StringVar(&opts.scorecardVariant, "scorecard-variant", "", "variant already recorded on the ticket; overrides --variant")
	flagSet.StringVarP(&opts.ratingsPath, "ratings", "f", "", `JSONC ratings file, or "-" for stdin`)
	flagSet.StringVar(&opts.catalogPath, "catalog", "", "rubric catalog YAML (default: built-in catalog)")
	flagSet.IntVar(&opts.manualScore, "manual-score", 0, "score to record for roles without a rubric")
	flagSet.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	flagSet.BoolVar(&opts.listRoles, "list-roles", false, "list roles with a rubric and exit")
	flagSet.BoolVar(&opts.listVariants, "list-variants", false, "list the variants of --role and exit")
	flagSet.BoolVar(&opts.verbose, "verbose", false, "log diagnostics to stderr")

	if err := flagSet.Parse(args); err != nil {
		return err
	}

	logger := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l
	}
	defer logger.Sync()

	catalog, err := rubrics.Load(opts.catalogPath)
	if err != nil {
		return err
	}
	logger.Debug("catalog loaded", zap.String("path", opts.catalogPath), zap.Strings("roles", catalog.Roles()))

	if opts.listRoles {
		for _, role := range catalog.Roles() {
			fmt.Fprintln(stdout, role)
		}
		return nil
	}

	if strings.TrimSpace(opts.role) == "" {
		return errors.New("--role is required")
	}

	if opts.listVariants {
		for _, v := range catalog.VariantsFor(opts.role) {
			fmt.Fprintln(stdout, v)
		}
		return nil
	}

	ratings := scorecard.RatingSet{}
	if opts.ratingsPath != "" {
		ratings, err = readRatings(opts.ratingsPath, stdin)
		if err != nil {
			return err
		}
	}
	logger.Debug("ratings read", zap.Int("count", len(ratings)))

	var manual *int
	if flagSet.Changed("manual-score") {
		manual = &opts.manualScore
	}

	rep, rubric, err := grade(catalog, opts, ratings, manual, presentation.DefaultLabels())
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return render(stdout, rep, rubric)
}

func readRatings(path string, stdin io.Reader) (scorecard.RatingSet, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read ratings: %w", err)
	}

	var ratings scorecard.RatingSet
	if err := json.Unmarshal(jsonc.ToJSON(data), &ratings); err != nil {
		return nil, fmt.Errorf("parse ratings %s: %w", path, err)
	}
	if ratings == nil {
		ratings = scorecard.RatingSet{}
	}
	return ratings, nil
}

// grade scores ratings and returns the rubric used, which is nil for manual roles.
// Ratings entered under a variant other than the effective one are dropped first.
func grade(catalog *scorecard.Catalog, opts options, ratings scorecard.RatingSet, manual *int, labels presentation.LabelTable) (report, *scorecard.RubricDefinition, error) {
	session, res := scorecard.StartSession(catalog, opts.role, opts.variant, opts.scorecardVariant, ratings)

	out, err := scorecard.Reconcile(catalog, session, manual)
	if err != nil {
		return report{}, nil, err
	}

	rep := report{
		Role:           opts.role,
		Score:          out.Score,
		Mode:           out.Mode,
		Status:         out.Status(),
		NeedsSelection: res.NeedsSelection,
		VariantLocked:  res.Locked,
		Sections:       []scorecard.SectionResult{},
		Ratings:        make(map[string]ratingView, len(session.Ratings)),
	}
	for id, r := range session.Ratings {
		rep.Ratings[id] = ratingView{Value: r, Label: labels.For(r)}
	}
	if res.Variant != "" {
		v := res.Variant
		rep.Variant = &v
	}
	rubric, ok := catalog.Lookup(opts.role, res.Variant)
	if !ok {
		return rep, nil, nil
	}
	b := scorecard.Explain(rubric, session.Ratings)
	rep.Sections = b.Sections
	rep.ActiveWeight = b.ActiveWeight
	return rep, &rubric, nil
}

func render(w io.Writer, rep report, rubric *scorecard.RubricDefinition) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	title := rep.Role
	if rep.Variant != nil {
		title += " / " + *rep.Variant
	}
	fmt.Fprintf(tw, "Rubric:\t%s\n", title)
	if rep.NeedsSelection {
		fmt.Fprintf(tw, "\t(variant defaulted; choose one with --variant)\n")
	}

	if rubric != nil {
		fmt.Fprintln(tw)
		for i, sec := range rep.Sections {
			state := "excluded"
			if sec.Active {
				state = fmt.Sprintf("%d/%d", sec.Earned, sec.Max)
			}
			fmt.Fprintf(tw, "%s\tweight %d\t%s\n", sec.Title, sec.Weight, state)
			for _, id := range rubric.Sections[i].Criteria {
				r, ok := rep.Ratings[id]
				if !ok {
					fmt.Fprintf(tw, "  %s\t-\t\n", criterionLabel(rubric, id))
					continue
				}
				fmt.Fprintf(tw, "  %s\t%s [%s]\t%s\n", criterionLabel(rubric, id), r.Label.Text, r.Label.Color, r.Value)
			}
		}
		fmt.Fprintln(tw)
	}

	score := "-"
	if rep.Score != nil {
		score = fmt.Sprintf("%d", *rep.Score)
	}
	fmt.Fprintf(tw, "Score:\t%s\t(%s, %s)\n", score, rep.Status, rep.Mode)
	return tw.Flush()
}

func criterionLabel(rubric *scorecard.RubricDefinition, id string) string {
	if c, ok := rubric.Criteria[id]; ok && c.Label != "" {
		return c.Label
	}
	return id
}
