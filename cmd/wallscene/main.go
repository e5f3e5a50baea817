// Command wallscene renders one frame of a wallpaper scene directory to PNG.
//
// The directory holds scene.json, the model and material files it names, and
// a decoded image next to every texture key (materials/tree.tex is read from
// materials/tree.png, .webp, .jpg or .bmp).
//
//	wallscene -scene ./scene -out frame.png
//	wallscene -scene ./scene -inspect
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gogpu/wallscene"
	"github.com/gogpu/wallscene/assets"
	"github.com/gogpu/wallscene/config"
	"github.com/gogpu/wallscene/document"
)

const sceneFile = "scene.json"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "wallscene:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("wallscene", flag.ContinueOnError)
	var (
		sceneDir   = flags.String("scene", ".", "scene directory containing "+sceneFile)
		configPath = flags.String("config", "", "TOML config file")
		out        = flags.String("out", "", "output PNG (overrides output.path)")
		width      = flags.Uint("width", 0, "frame width (overrides render.width)")
		height     = flags.Uint("height", 0, "frame height (overrides render.height)")
		inspect    = flags.Bool("inspect", false, "list the object keys of "+sceneFile+" and exit")
		verbose    = flags.Bool("v", false, "debug logging")
	)
	if err := flags.Parse(args); err != nil {
		return err
	}

	scenePath := filepath.Join(*sceneDir, sceneFile)
	if *inspect {
		return inspectKeys(stdout, scenePath)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *out != "" {
		cfg.Output.Path = *out
	}
	if *width > 0 && *height > 0 {
		cfg.Render.Width, cfg.Render.Height = uint32(*width), uint32(*height) //nolint:gosec // flag values
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	level, _ := cfg.Log.SlogLevel()
	wallscene.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return render(stdout, cfg, *sceneDir, scenePath)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func render(stdout io.Writer, cfg config.Config, sceneDir, scenePath string) error {
	f, err := os.Open(scenePath)
	if err != nil {
		return err
	}
	root, err := document.Load(f)
	f.Close()
	if err != nil {
		return err
	}

	gpu, err := openDevice()
	if err != nil {
		return err
	}
	defer gpu.Close()

	fsys := os.DirFS(sceneDir)
	index, missingModels, err := assets.IndexScene(fsys, root)
	if err != nil {
		return err
	}
	cache, missingImages, err := assets.LoadTextures(fsys, index, assets.NewUploader(gpu.device, gpu.queue))
	if err != nil {
		return err
	}
	defer cache.Destroy(gpu.device)

	opts := []wallscene.Option{wallscene.WithLimits(wallscene.LimitsForObjects(cfg.Render.MaxObjects))}
	if cfg.Render.Width > 0 {
		opts = append(opts, wallscene.WithSize(cfg.Render.Width, cfg.Render.Height))
	}
	if cfg.Render.SPIRV {
		opts = append(opts, wallscene.WithSPIRVShader())
	}
	r, err := wallscene.NewRenderer(gpu.device, gpu.queue, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	img, report, err := r.RenderFrame(root, index, cache)
	printReport(stdout, report, missingModels, missingImages)
	if err != nil {
		return err
	}

	if err := savePNG(cfg.Output.Path, img); err != nil {
		return err
	}
	fmt.Fprintln(stdout, styles.ok.Render("wrote "+cfg.Output.Path))
	return nil
}

func savePNG(path string, img *image.RGBA) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(f, img)
}

func inspectKeys(stdout io.Writer, scenePath string) error {
	f, err := os.Open(scenePath)
	if err != nil {
		return err
	}
	defer f.Close()
	keys, err := document.SurveyKeys(f)
	if err != nil {
		return err
	}
	printKeys(stdout, keys)
	return nil
}
