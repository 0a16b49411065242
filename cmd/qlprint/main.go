// cmd/qlprint/main.go
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/convert"
	"label-service/internal/imageio"
	"label-service/internal/service"
	"label-service/internal/utils"
)

type cliFlags struct {
	configPath  string
	catalogPath string
	model       string
	label       string
	printer     string
	output      string
	preview     string
	verbose     bool

	listLabels bool
	listModels bool
	discover   bool
	status     bool

	cut       bool
	dither    bool
	compress  bool
	red       bool
	rotate    string
	dpi600    bool
	hq        bool
	threshold float64
	offsetX   int
	strict    bool
}

func main() {
	flags := parseFlags()

	if err := run(flags, pflag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "qlprint: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() *cliFlags {
	f := &cliFlags{}
	defaults := convert.DefaultOptions()

	pflag.StringVarP(&f.configPath, "config", "c", "", "config file with printer and conversion defaults")
	pflag.StringVar(&f.catalogPath, "catalog", "", "YAML file overriding or extending the built-in label and model catalog")
	pflag.StringVarP(&f.model, "model", "m", "", "printer model, e.g. QL-810W")
	pflag.StringVarP(&f.label, "label", "l", "", "label identifier, e.g. 62 or 62x29")
	pflag.StringVarP(&f.printer, "printer", "p", "", "printer URI: tcp://host[:port], usb://vid:pid[/serial], serial://port, file:///dev/usb/lp0")
	pflag.StringVarP(&f.output, "output", "o", "", "write the instructions to a file instead of a printer, - for stdout")
	pflag.StringVar(&f.preview, "preview", "", "write the separated ink layers of the first image as PNG")
	pflag.BoolVarP(&f.verbose, "verbose", "v", false, "log debug output to stderr")

	pflag.BoolVar(&f.listLabels, "list-labels", false, "list known labels and exit")
	pflag.BoolVar(&f.listModels, "list-models", false, "list known printer models and exit")
	pflag.BoolVar(&f.discover, "discover", false, "scan for printers and exit")
	pflag.BoolVar(&f.status, "status", false, "query the printer status and exit")

	pflag.BoolVar(&f.cut, "cut", defaults.Cut, "cut after each label")
	pflag.BoolVarP(&f.dither, "dither", "d", defaults.Dither, "dither instead of thresholding")
	pflag.BoolVarP(&f.compress, "compress", "C", defaults.Compress, "compress raster rows")
	pflag.BoolVar(&f.red, "red", defaults.Red, "print black and red on two-color media")
	pflag.StringVarP(&f.rotate, "rotate", "r", defaults.Rotate.String(), "rotation: auto, 0, 90, 180 or 270")
	pflag.BoolVar(&f.dpi600, "600dpi", defaults.DPI600, "print at 600 dpi along the feed direction")
	pflag.BoolVar(&f.hq, "hq", defaults.HQ, "high quality mode")
	pflag.Float64VarP(&f.threshold, "threshold", "t", defaults.ThresholdPercent, "darkness threshold in percent")
	pflag.IntVar(&f.offsetX, "offset-x", defaults.OffsetX, "extra horizontal offset in dots")
	pflag.BoolVar(&f.strict, "strict", false, "fail on commands the model does not support")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: qlprint [flags] image...\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	return f
}

// loadConfig reads the config file and lets explicitly set flags win
func loadConfig(f *cliFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	changed := pflag.CommandLine.Changed
	if changed("catalog") {
		cfg.Catalog.Path = f.catalogPath
	}
	if changed("model") {
		cfg.Printer.Model = f.model
	}
	if changed("label") {
		cfg.Printer.Label = f.label
	}
	if changed("printer") {
		cfg.Printer.URI = f.printer
	}
	if changed("strict") {
		cfg.Printer.Strict = f.strict
	}

	conv := &cfg.Conversion
	if changed("cut") {
		conv.Cut = f.cut
	}
	if changed("dither") {
		conv.Dither = f.dither
	}
	if changed("compress") {
		conv.Compress = f.compress
	}
	if changed("red") {
		conv.Red = f.red
	}
	if changed("rotate") {
		conv.Rotate = f.rotate
	}
	if changed("600dpi") {
		conv.DPI600 = f.dpi600
	}
	if changed("hq") {
		conv.HQ = f.hq
	}
	if changed("threshold") {
		conv.Threshold = f.threshold
	}
	if changed("offset-x") {
		conv.OffsetX = f.offsetX
	}

	// log to stderr so -o - keeps stdout clean
	cfg.Logging.Output = "stderr"
	cfg.Logging.Format = "console"
	cfg.Logging.Level = "warn"
	if f.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func run(f *cliFlags, args []string) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer utils.CloseLogger(logger)

	registry, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case f.listLabels:
		return listLabels(registry, f.model)
	case f.listModels:
		return listModels(registry)
	case f.discover:
		return discover(ctx, registry, cfg, logger)
	}

	printService := service.NewPrintService(convert.NewConverter(registry, logger), registry, cfg, logger)

	if f.status {
		return printStatus(ctx, printService, cfg.Printer.URI)
	}

	if len(args) == 0 {
		pflag.Usage()
		return fmt.Errorf("no images given")
	}
	images := make([]image.Image, 0, len(args))
	for _, path := range args {
		img, err := imageio.LoadFile(path)
		if err != nil {
			return err
		}
		images = append(images, img)
	}
	req := &service.PrintRequest{Images: images}

	if f.preview != "" {
		img, warnings, err := printService.Preview(req)
		if err != nil {
			return err
		}
		printWarnings(warnings)
		if err := imageio.SavePNG(f.preview, img); err != nil {
			return err
		}
		if f.output == "" && cfg.Printer.URI == "" {
			return nil
		}
	}

	switch {
	case f.output == "-":
		job, data, err := printService.Convert(ctx, req)
		if err != nil {
			return err
		}
		printWarnings(job.Warnings)
		_, err = os.Stdout.Write(data)
		return err
	case f.output != "":
		path, err := filepath.Abs(f.output)
		if err != nil {
			return err
		}
		req.URI = "file://" + path
	}

	job, err := printService.Print(ctx, req)
	if err != nil {
		return err
	}
	printWarnings(job.Warnings)
	fmt.Fprintf(os.Stderr, "%d page(s), %d bytes sent to %s\n", job.Pages, job.Bytes, job.Target)
	return nil
}

func printWarnings(warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

func listLabels(registry *catalog.Registry, model string) error {
	labels := registry.Labels()
	if model != "" {
		if _, err := registry.Model(model); err != nil {
			return err
		}
		labels = registry.LabelsForModel(model)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LABEL\tKIND\tDOTS\tNAME")
	for _, l := range labels {
		width, height := l.DotsPrintable()
		dots := fmt.Sprintf("%d", width)
		if height > 0 {
			dots = fmt.Sprintf("%dx%d", width, height)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Identifier, l.Kind, dots, l.Name)
	}
	return w.Flush()
}

func listModels(registry *catalog.Registry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tDOTS\tFEATURES")
	for _, m := range registry.Models() {
		var features []string
		if m.HasCutting {
			features = append(features, "cut")
		}
		if m.HasCompression {
			features = append(features, "compress")
		}
		if m.HasTwoColor {
			features = append(features, "red")
		}
		if m.Has600DPI {
			features = append(features, "600dpi")
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", m.Name, m.PixelWidth(), strings.Join(features, ","))
	}
	return w.Flush()
}

func discover(ctx context.Context, registry *catalog.Registry, cfg *config.Config, logger *zap.Logger) error {
	ds := service.NewDiscoveryService(registry, cfg, logger)
	printers, err := ds.Scan(ctx, "all")
	if err != nil {
		return err
	}
	if len(printers) == 0 {
		fmt.Fprintln(os.Stderr, "no printers found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "URI\tMODEL\tCONFIDENCE\tSUPPORTED")
	for _, p := range printers {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%t\n", p.URI, p.Model, p.Confidence, p.Supported)
	}
	return w.Flush()
}

func printStatus(ctx context.Context, ps *service.PrintService, uri string) error {
	info, status, err := ps.Status(ctx, uri)
	if err != nil {
		return err
	}
	fmt.Printf("state:  %s\n", info.State)
	fmt.Printf("media:  %d mm x %d mm (type %#02x)\n", status.MediaWidthMM, status.MediaLengthMM, byte(status.MediaType))
	fmt.Printf("phase:  %d\n", status.Phase)
	if len(status.Errors) > 0 {
		fmt.Printf("errors: %s\n", strings.Join(status.Errors, ", "))
	}
	return nil
}
