// Command holefind locates support-grid holes in a microscope image by
// template matching and exports them as navigation points.
package main

import (
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"strconv"
	"strings"

	"holefinder/internal/cluster"
	"holefinder/internal/config"
	img "holefinder/internal/image"
	"holefinder/internal/match"
	"holefinder/internal/nav"
	"holefinder/internal/navfile"
	"holefinder/internal/prefs"
	"holefinder/internal/version"
	"holefinder/pkg/geometry"
)

type options struct {
	imagePath    string
	templatePath string
	crop         string
	configPath   string

	threshold    float64
	blurImage    bool
	blurTemplate bool
	blurSigma    float64
	downsample   int
	origin       string

	grouping    bool
	groupRadius float64
	pixelSize   float64
	linkage     string

	navPath  string
	label    string
	start    int
	outPath  string
	appendTo bool

	showVersion bool
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var opts options
	flag.StringVar(&opts.imagePath, "image", "", "Path to grid image (TIFF, PNG, or JPEG)")
	flag.StringVar(&opts.templatePath, "template", "", "Path to reference hole image")
	flag.StringVar(&opts.crop, "crop", "", "Cut the template from the image instead: x,y,w,h")
	flag.StringVar(&opts.configPath, "config", "", "JSON search config")
	flag.Float64Var(&opts.threshold, "threshold", 0.8, "Minimum correlation score")
	flag.BoolVar(&opts.blurImage, "blur-image", false, "Gaussian-blur the image before matching")
	flag.BoolVar(&opts.blurTemplate, "blur-template", false, "Gaussian-blur the template before matching")
	flag.Float64Var(&opts.blurSigma, "blur-sigma", 2.0, "Blur standard deviation in pixels")
	flag.IntVar(&opts.downsample, "downsample", 1, "Score at 1/N resolution")
	flag.StringVar(&opts.origin, "origin", "bottom-left", "Coordinate origin: top-left or bottom-left")
	flag.BoolVar(&opts.grouping, "group", true, "Group nearby holes")
	flag.Float64Var(&opts.groupRadius, "group-radius", 7, "Group radius in µm")
	flag.Float64Var(&opts.pixelSize, "pixel-size", 10, "Pixel size in nm")
	flag.StringVar(&opts.linkage, "linkage", "anchor", "Grouping linkage: anchor or chain")
	flag.StringVar(&opts.navPath, "nav", "", "Navigation file holding the parent map")
	flag.StringVar(&opts.label, "label", "", "Label of the map item to merge onto (default: last used)")
	flag.IntVar(&opts.start, "start", -1, "Starting label for new items (default: continue from last export)")
	flag.StringVar(&opts.outPath, "out", "", "Navigation file to write (default with -append: last written)")
	flag.BoolVar(&opts.appendTo, "append", false, "Append to an existing generated file instead of creating one")
	flag.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if opts.showVersion {
		fmt.Println(version.String())
		return
	}
	if opts.imagePath == "" || (opts.templatePath == "" && opts.crop == "") {
		fmt.Println("Usage: holefind -image <path> (-template <path> | -crop x,y,w,h) [-nav <file> -out <file>]")
		os.Exit(1)
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := run(opts, set); err != nil {
		fmt.Fprintf(os.Stderr, "holefind: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options, set map[string]bool) error {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlags(cfg, opts, set)
	if err := cfg.Validate(); err != nil {
		return err
	}
	params := cfg.MatchParams()

	if !img.IsSupportedFormat(opts.imagePath) {
		log.Printf("Unrecognised image extension %s, trying anyway", opts.imagePath)
	}
	src, err := img.Load(opts.imagePath)
	if err != nil {
		return err
	}
	size := img.Size(src)
	fmt.Printf("Loaded image: %dx%d pixels\n", size.Width, size.Height)

	tmpl, err := loadTemplate(opts, src, params.Origin)
	if err != nil {
		return err
	}
	tsize := img.Size(tmpl)
	fmt.Printf("Template: %dx%d pixels\n", tsize.Width, tsize.Height)

	fmt.Printf("\nSearch parameters:\n")
	fmt.Printf("  Threshold: %.3f\n", params.Threshold)
	fmt.Printf("  Blur: image=%v template=%v sigma=%.1f\n", params.BlurImage, params.BlurTemplate, params.BlurSigma)
	fmt.Printf("  Downsample: %d\n", params.Downsample)
	fmt.Printf("  Origin: %s\n", params.Origin)

	log.Printf("Searching...")
	result, err := match.Search(src, tmpl, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printMatches(result)

	var groups []cluster.Group
	if cfg.GetGrouping() {
		groups = cfg.ClusterParams().Cluster(result.Matches)
		printGroups(groups, cfg)
	}

	if opts.navPath == "" {
		return nil
	}
	return export(opts, cfg.GetGrouping(), result.Matches, groups)
}

// applyFlags copies explicitly set flags over the config values.
func applyFlags(cfg *config.SearchConfig, opts options, set map[string]bool) {
	if set["threshold"] {
		cfg.Threshold = &opts.threshold
	}
	if set["blur-image"] {
		cfg.BlurImage = &opts.blurImage
	}
	if set["blur-template"] {
		cfg.BlurTemplate = &opts.blurTemplate
	}
	if set["blur-sigma"] {
		cfg.BlurSigma = &opts.blurSigma
	}
	if set["downsample"] {
		cfg.Downsample = &opts.downsample
	}
	if set["origin"] {
		cfg.Origin = &opts.origin
	}
	if set["group"] {
		cfg.Grouping = &opts.grouping
	}
	if set["group-radius"] {
		cfg.GroupRadiusUm = &opts.groupRadius
	}
	if set["pixel-size"] {
		cfg.PixelSizeNm = &opts.pixelSize
	}
	if set["linkage"] {
		cfg.Linkage = &opts.linkage
	}
}

// loadTemplate reads the template file or cuts it from src. Crop coordinates
// are given in the output origin convention.
func loadTemplate(opts options, src image.Image, origin geometry.Origin) (image.Image, error) {
	if opts.templatePath != "" {
		return img.Load(opts.templatePath)
	}
	r, err := parseCrop(opts.crop)
	if err != nil {
		return nil, err
	}
	flip := geometry.Flip{Origin: origin, Height: src.Bounds().Dy()}
	return img.Crop(src, flip.Rect(r))
}

// parseCrop parses "x,y,w,h".
func parseCrop(s string) (geometry.RectInt, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.RectInt{}, fmt.Errorf("crop %q: want x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return geometry.RectInt{}, fmt.Errorf("crop %q: %w", s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return geometry.RectInt{}, fmt.Errorf("crop %q: width and height must be positive", s)
	}
	return geometry.RectInt{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// export merges the matches onto the map item and writes them out. With
// grouping on, groups are the ones already printed.
func export(opts options, grouping bool, matches []match.Match, groups []cluster.Group) error {
	session := prefs.Load()

	if err := checkAutodoc(opts.navPath); err != nil {
		return err
	}
	nf, err := navfile.Load(opts.navPath)
	if err != nil {
		return err
	}
	log.Printf("Read nav file %s (%d items)", opts.navPath, len(nf.Labels()))

	label := opts.label
	if label == "" {
		label = session.String(prefs.KeyLastMapLabel)
	}
	if label == "" {
		return fmt.Errorf("no map label given (-label)")
	}
	item, err := nf.Item(label)
	if err != nil {
		return err
	}
	meta, err := nav.ParseMapMetadata(item.Fields)
	if err != nil {
		return fmt.Errorf("map %s: %w", label, err)
	}

	start := opts.start
	if start < 0 {
		start = session.Int(prefs.KeyNextStartLabel, 0)
	}
	if start < 0 {
		return fmt.Errorf("start label %d must not be negative", start)
	}

	out := opts.outPath
	if out == "" && opts.appendTo {
		out = session.String(prefs.KeyLastNavOutput)
	}
	if out == "" {
		return fmt.Errorf("no output file given (-out)")
	}

	exp, err := buildExport(nav.NewMapper(), meta, start, grouping, matches, groups)
	if err != nil {
		return err
	}

	if opts.appendTo {
		existing, err := navfile.Load(out)
		if err != nil {
			return err
		}
		if err := checkLabels(existing, exp.Points); err != nil {
			return err
		}
		err = navfile.Append(out, exp.Points)
		if err != nil {
			return err
		}
		fmt.Printf("\nAppended %d points to %s (labels %d-%d)\n", len(exp.Points), out, start, exp.NextLabel-1)
	} else {
		if err := navfile.Create(out, exp.Points); err != nil {
			return err
		}
		fmt.Printf("\nCreated %s with %d points (labels %d-%d)\n", out, len(exp.Points), start, exp.NextLabel-1)
	}

	session.SetString(prefs.KeyLastMapLabel, label)
	session.SetInt(prefs.KeyNextStartLabel, exp.NextLabel)
	session.SetString(prefs.KeyLastNavOutput, out)
	if err := session.Save(); err != nil {
		log.Printf("Failed to save session %s: %v", session.Path(), err)
	}
	return nil
}

func buildExport(m *nav.Mapper, meta nav.MapMetadata, start int, grouping bool, matches []match.Match, groups []cluster.Group) (nav.Export, error) {
	if grouping {
		return m.FromGroups(groups, meta, start), nil
	}
	return m.ToNavPoints(matches, meta, nav.Options{StartLabel: start})
}

// checkAutodoc fails unless path starts with an AdocVersion line.
func checkAutodoc(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if !navfile.IsValid(f) {
		return fmt.Errorf("%s: %w", path, navfile.ErrNotAutodoc)
	}
	return nil
}

// checkLabels rejects points whose label is already taken in existing.
func checkLabels(existing *navfile.File, points []nav.NavPoint) error {
	for _, p := range points {
		if existing.HasItem(strconv.Itoa(p.Label)) {
			return fmt.Errorf("label %d already used in output file (pick another -start)", p.Label)
		}
	}
	return nil
}

func printMatches(result *match.Result) {
	fmt.Printf("\n%d points (%d candidates above threshold, best score %.3f):\n",
		len(result.Matches), result.Candidates, result.BestScore)
	fmt.Printf("%-6s %8s %8s %8s\n", "#", "X", "Y", "Score")
	for i, m := range result.Matches {
		fmt.Printf("%-6d %8d %8d %8.3f\n", i+1, m.X, m.Y, m.Score)
	}
}

func printGroups(groups []cluster.Group, cfg *config.SearchConfig) {
	fmt.Printf("\n%d groups (radius %.1f µm = %.0f px, %s linkage):\n",
		len(groups), cfg.GetGroupRadiusUm(), cfg.GroupRadiusPixels(), cfg.GetLinkage())
	for i, g := range groups {
		l := g.Leader()
		fmt.Printf("  group %d: leader (%d, %d), %d members\n", i+1, l.X, l.Y, g.Len())
	}
}
