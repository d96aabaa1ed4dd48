package classify

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/bac-archiver/models"
	classifypkg "github.com/dtnitsch/bac-archiver/pkg/classify"
	"github.com/dtnitsch/bac-archiver/pkg/placement"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Result is the classification of one filename.
type Result struct {
	Input        string                    `json:"input" yaml:"input"`
	Excluded     bool                      `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Descriptor   *models.ExamDescriptor    `json:"descriptor,omitempty" yaml:"descriptor,omitempty"`
	Placement    *models.PlacementDecision `json:"placement,omitempty" yaml:"placement,omitempty"`
	ErrorType    string                    `json:"error_type,omitempty" yaml:"error_type,omitempty"`
	ErrorMessage string                    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
}

// ClassifyAction prints the descriptor and placement for each filename given
// as an argument, or read one per line from stdin.
func ClassifyAction(c *cli.Context) error {
	rs, err := rules.LoadOrDefault(c.String("rules"))
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	names := c.Args().Slice()
	if len(names) == 0 {
		names, err = readLines(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "Error: No filenames provided")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, `  bac-archiver classify E_c_istorie_2025_var_model_LRO.pdf`)
		fmt.Fprintln(os.Stderr, `  unzip -Z1 E_c_istorie_2025.zip | bac-archiver classify --origin "http://subiecte.edu.ro/2025/simulare/"`)
		os.Exit(1)
	}

	results := Classify(classifypkg.New(rs), placement.New(rs), c.String("origin"), names)
	return write(os.Stdout, results, c.String("format"))
}

// Classify runs parser and planner over names without touching the network.
func Classify(p *classifypkg.Parser, planner *placement.Planner, origin string, names []string) []Result {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		r := Result{Input: name}
		if p.IsExcludedVariant(name) {
			r.Excluded = true
			r.ErrorType = models.ErrorTypeExcluded
			results = append(results, r)
			continue
		}
		d, err := p.ParseWithOrigin(origin, "", name)
		if err == nil {
			r.Descriptor = &d
			var decision models.PlacementDecision
			if decision, err = planner.Plan(d); err == nil {
				r.Placement = &decision
			}
		}
		if err != nil {
			r.ErrorType = models.ErrorType(err)
			r.ErrorMessage = err.Error()
		}
		results = append(results, r)
	}
	return results
}

// RulesAction prints the effective rule set.
func RulesAction(c *cli.Context) error {
	rs, err := rules.LoadOrDefault(c.String("rules"))
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	data, err := rs.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func write(w io.Writer, results []Result, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
