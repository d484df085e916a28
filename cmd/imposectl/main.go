// Command imposectl runs the imposition pipeline from the command line:
// one verb per subcommand, in the same shape as pdfcpu's own CLI.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sheetwright/imposer/pkg/imposition"
)

var (
	configPath                        string
	outPath                           string
	mode                              string
	trimWidth, trimHeight             float64
	bleedTop, bleedBottom             float64
	bleedLeft, bleedRight             float64
	sheetWidth, sheetHeight           float64
	gap                               float64
	duplex, autoRotate                bool
	flipEdge                          string
)

func init() {
	flag.StringVar(&configPath, "config", "", "YAML file carrying an ImpositionConfig override")
	flag.StringVar(&outPath, "out", "", "output PDF path (default: <input>_imposed.pdf)")
	flag.StringVar(&mode, "mode", "step_and_repeat", "step_and_repeat|booklet_saddle_stitch|booklet_perfect_bind|cut_and_stack")
	flag.Float64Var(&trimWidth, "trim-width", 0, "trim width in mm")
	flag.Float64Var(&trimHeight, "trim-height", 0, "trim height in mm")
	flag.Float64Var(&bleedTop, "bleed-top", 3, "top bleed in mm")
	flag.Float64Var(&bleedBottom, "bleed-bottom", 3, "bottom bleed in mm")
	flag.Float64Var(&bleedLeft, "bleed-left", 3, "left bleed in mm")
	flag.Float64Var(&bleedRight, "bleed-right", 3, "right bleed in mm")
	flag.Float64Var(&sheetWidth, "sheet-width", 488, "sheet width in mm")
	flag.Float64Var(&sheetHeight, "sheet-height", 330, "sheet height in mm")
	flag.Float64Var(&gap, "gap", 0, "gap between items in mm")
	flag.BoolVar(&duplex, "duplex", false, "print both sides of each sheet")
	flag.BoolVar(&autoRotate, "auto-rotate", true, "rotate cells 90 degrees if it improves yield")
	flag.StringVar(&flipEdge, "flip-edge", "long", "long|short: duplex flip axis")
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "impose":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		if err := runImpose(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "imposectl: %v\n", err)
			os.Exit(1)
		}
	case "analyze":
		if len(args) != 2 {
			usage()
			os.Exit(1)
		}
		if err := runAnalyze(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "imposectl: %v\n", err)
			os.Exit(1)
		}
	case "h", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "imposectl: unknown subcommand %q\n", args[0])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: imposectl [flags] <verb> <input.pdf>

verbs:
  impose    run the full imposition pipeline, writing an imposed PDF
  analyze   print page geometry and warnings for the source PDF

flags:`)
	flag.PrintDefaults()
}

func ensurePdfExtension(filename string) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return fmt.Errorf("%s needs extension \".pdf\"", filename)
	}
	return nil
}

func defaultOutPath(in string) string {
	return in[:len(in)-4] + "_imposed.pdf"
}

// buildConfig starts from the flag-derived config, then lets -config's YAML
// override any field it names — flags set the baseline, the config file
// narrows it, exactly as pdfcpu's own -mode/-pages flags compose with a
// loaded Configuration.
func buildConfig() (imposition.ImpositionConfig, error) {
	cfg := imposition.ImpositionConfig{
		Mode:       imposition.ImpositionMode(mode),
		TrimWidth:  trimWidth,
		TrimHeight: trimHeight,
		Bleed: imposition.BleedConfig{
			Top: bleedTop, Bottom: bleedBottom, Left: bleedLeft, Right: bleedRight,
		},
		Marks: imposition.DefaultMarkConfig(),
		Sheet: imposition.SheetConfig{
			SheetWidth:  sheetWidth,
			SheetHeight: sheetHeight,
			Orientation: imposition.Landscape,
			MarkMargin:  imposition.DefaultSheetConfig().MarkMargin,
		},
		GapBetweenItems: gap,
		Duplex:          duplex,
		FlipEdge:        imposition.FlipEdge(flipEdge),
		AutoRotate:      autoRotate,
	}

	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("reading -config %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing -config %s: %w", configPath, err)
	}
	return cfg, nil
}

func runImpose(in string) error {
	if err := ensurePdfExtension(in); err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	result, err := imposition.Impose(data, cfg, in, time.Now())
	if err != nil {
		return fmt.Errorf("imposing %s: %w", in, err)
	}

	out := outPath
	if out == "" {
		out = defaultOutPath(in)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if _, err := result.Document.WriteTo(f); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Printf("imposed %d source page(s) onto %d output page(s) -> %s\n",
		len(result.Analysis.Pages), result.Document.PageCount(), out)
	return nil
}

func runAnalyze(in string) error {
	if err := ensurePdfExtension(in); err != nil {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", in, err)
	}

	result, err := imposition.AnalyzeSource(data)
	if err != nil {
		return fmt.Errorf("analyzing %s: %w", in, err)
	}

	fmt.Printf("%d page(s)\n", len(result.Pages))
	for _, pg := range result.Pages {
		box := pg.EffectiveTrimBox()
		fmt.Printf("  page %d: %.1fx%.1fmm trim, bleed t=%.1f b=%.1f l=%.1f r=%.1f\n",
			pg.PageIndex+1, box.Width, box.Height,
			pg.DetectedBleed.Top, pg.DetectedBleed.Bottom, pg.DetectedBleed.Left, pg.DetectedBleed.Right)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s: %s\n", w.Kind, w.Message)
	}
	return nil
}
