// Command gfxdemo draws a spinning triangle with the gfx "gl" backend into
// an offscreen render pass and presents it to a GLFW window.
//
// Usage:
//
//	gfxdemo [-config demo.toml] [-width 800] [-height 600] [-capture frame.png]
//
// Flags override values read from the config file.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/gogpu/gfx"
	_ "github.com/gogpu/gfx/backend/gl/glcore"
	"github.com/gogpu/gfx/internal/capture"
	"github.com/gogpu/gfx/internal/config"
)

func init() {
	// GL contexts belong to the thread that made them current.
	runtime.LockOSThread()
}

type options struct {
	cfg     config.Demo
	frames  int
	verbose bool
}

func parseFlags(args []string) (options, error) {
	def := config.Default()
	fs := flag.NewFlagSet("gfxdemo", flag.ContinueOnError)
	var (
		path        = fs.String("config", "", "TOML or YAML config file")
		width       = fs.Int("width", def.Width, "window width")
		height      = fs.Int("height", def.Height, "window height")
		title       = fs.String("title", def.Title, "window title")
		backend     = fs.String("backend", def.Backend, "gfx backend name")
		vsync       = fs.Bool("vsync", def.VSync, "wait for vertical sync")
		clearColor  = fs.String("clear", "", "clear color as r,g,b,a in [0, 1]")
		profiling   = fs.Bool("profile", def.Profiling, "log GPU frame times")
		capturePath = fs.String("capture", def.Capture, "write the first frame to this image file")
		frames      = fs.Int("frames", 0, "exit after this many frames, 0 runs until the window closes")
		verbose     = fs.Bool("v", false, "debug logging")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := def
	if *path != "" {
		var err error
		if cfg, err = config.Load(*path); err != nil {
			return options{}, err
		}
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "title":
			cfg.Title = *title
		case "backend":
			cfg.Backend = *backend
		case "vsync":
			cfg.VSync = *vsync
		case "clear":
			var c [4]float32
			if c, err = parseColor(*clearColor); err == nil {
				cfg.ClearColor = c
			}
		case "profile":
			cfg.Profiling = *profiling
		case "capture":
			cfg.Capture = *capturePath
		}
	})
	if err != nil {
		return options{}, err
	}
	if err := cfg.Validate(); err != nil {
		return options{}, fmt.Errorf("gfxdemo: %w", err)
	}
	if *frames < 0 {
		return options{}, fmt.Errorf("gfxdemo: -frames %d must not be negative", *frames)
	}
	return options{cfg: cfg, frames: *frames, verbose: *verbose}, nil
}

func parseColor(s string) ([4]float32, error) {
	var c [4]float32
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return c, fmt.Errorf("gfxdemo: -clear %q: want four comma-separated components", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return c, fmt.Errorf("gfxdemo: -clear %q: %w", s, err)
		}
		c[i] = float32(v)
	}
	return c, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	gfx.SetLogger(logger)

	if err := run(opts, logger); err != nil {
		logger.Error("gfxdemo failed", "err", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	cfg := opts.cfg
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("init glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Destroy()
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	dev, err := gfx.Open(cfg.Backend, gfx.WithLogger(logger), gfx.WithProfiling(cfg.Profiling))
	if err != nil {
		return err
	}
	defer dev.Destroy()

	s, err := newScene(dev, &cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.release(); err != nil {
			logger.Warn("gfxdemo: release scene", "err", err)
		}
	}()

	timer, _ := dev.(interface{ LastGPUTime() float32 })
	start := time.Now()
	for n := 0; !win.ShouldClose() && (opts.frames == 0 || n < opts.frames); n++ {
		cb, err := s.frame(float32(time.Since(start).Seconds()))
		if err != nil {
			return err
		}
		if err := dev.ExecuteCmdBuffers(cb); err != nil {
			return err
		}
		if n == 0 && cfg.Capture != "" {
			if err := saveFrame(dev, s.pass, cfg.Capture); err != nil {
				return err
			}
			logger.Info("gfxdemo: frame captured", "path", cfg.Capture)
		}

		w, h := win.GetFramebufferSize()
		if w > 0 && h > 0 {
			if err := dev.Present(s.pass, w, h); err != nil {
				return err
			}
		}
		if cfg.Profiling && timer != nil && n%120 == 119 {
			logger.Info("gfxdemo: gpu time", "frame", n, "ms", timer.LastGPUTime())
		}

		win.SwapBuffers()
		glfw.PollEvents()
	}
	return nil
}

func saveFrame(dev gfx.Device, pass gfx.RenderPassHandle, path string) error {
	img, err := dev.ReadPixels(pass, 0)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return capture.Save(path, img)
}
