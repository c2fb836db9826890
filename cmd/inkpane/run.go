package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"

	"github.com/example/inkpane/internal/appstate"
	"github.com/example/inkpane/internal/capture"
	"github.com/example/inkpane/internal/config"
	"github.com/example/inkpane/internal/overlay"
	"github.com/example/inkpane/internal/session"
	"github.com/example/inkpane/internal/stroke"
)

type runCmd struct {
	*root
	fs *flag.FlagSet

	annotate bool
	monitor  string
	cursor   bool
	name     string
	dir      string
	noSocket bool
	watch    bool
}

func parseRunCmd(args []string, r *root) (*runCmd, error) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	c := &runCmd{root: r, fs: fs}
	fs.BoolVar(&c.annotate, "annotate", false, "start with annotation mode on")
	fs.StringVar(&c.monitor, "monitor", "", "monitor to capture for the backdrop (index, primary or part of the output name)")
	fs.BoolVar(&c.cursor, "cursor", false, "include the pointer in the backdrop")
	fs.StringVar(&c.name, "name", defaultSocketName, "control socket name")
	fs.StringVar(&c.dir, "dir", "", "directory that stores control sockets")
	fs.BoolVar(&c.noSocket, "no-socket", false, "do not listen for control commands")
	fs.BoolVar(&c.watch, "watch", true, "reload the config file when it changes")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *runCmd) Program() string { return c.root.program + " run" }

func (c *runCmd) FlagSet() *flag.FlagSet { return c.fs }

// newSession builds a session from the loaded config.
func newSession(cfg *config.Config, r *root, capt capture.Options) *session.Session {
	tb := cfg.Toolbar
	return session.New(
		session.WithNotifier(r.notifier),
		session.WithTheme(r.activeTheme),
		session.WithToolbar(image.Rect(tb.X, tb.Y, tb.X+tb.Width, tb.Y+tb.Height)),
		session.WithCapture(capt),
		session.WithStrokeOptions(stroke.WithColor(cfg.Pen.Color), stroke.WithWidth(cfg.Pen.Width)),
		session.WithOverlayOptions(
			overlay.WithMinSize(cfg.TextBox.MinWidth, cfg.TextBox.MinHeight),
			overlay.WithStyle(cfg.OverlayStyle()),
		),
		session.WithOutline(cfg.OutlineOptions()),
		session.WithFontSize(cfg.TextBox.FontSize),
		session.WithEraserFactor(cfg.Eraser.Factor),
		session.WithOnTextBoxCreate(func(tb overlay.TextBox) {
			log.Printf("text box %s created at %.0f,%.0f", tb.ID, tb.X, tb.Y)
		}),
		session.WithOnClear(func() { log.Print("annotations cleared") }),
	)
}

// applyConfig pushes the settings that can change while running.
func applyConfig(s *session.Session, cfg *config.Config, r *root) {
	if err := s.SetColor(cfg.Pen.Color); err != nil {
		log.Printf("reload pen color: %v", err)
	}
	if err := s.SetWidth(cfg.Pen.Width); err != nil {
		log.Printf("reload pen width: %v", err)
	}
	s.SetTheme(resolveTheme(r.themeName, cfg))
	tb := cfg.Toolbar
	s.SetToolbar(image.Rect(tb.X, tb.Y, tb.X+tb.Width, tb.Y+tb.Height))
}

func (c *runCmd) Run() error {
	sess := newSession(c.config, c.root, capture.Options{Monitor: c.monitor, IncludeCursor: c.cursor})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := appstate.New(sess,
		appstate.WithAnnotate(c.annotate),
		appstate.WithOnClose(cancel),
	)

	if !c.noSocket {
		dir, err := resolveSocketDir(c.dir)
		if err != nil {
			return fmt.Errorf("socket dir: %w", err)
		}
		srv, err := listenControl(dir, c.name, app)
		if err != nil {
			return fmt.Errorf("control socket: %w", err)
		}
		go func() {
			if err := srv.serve(ctx); err != nil {
				log.Printf("control socket: %v", err)
			}
		}()
		defer srv.close()
	}

	if c.watch {
		if path := config.NewLoader(version, configPathOverride).GetConfigPath(); path != "" {
			err := config.Watch(ctx, path, func(cfg *config.Config) {
				if err := app.Do(ctx, func(s *session.Session) { applyConfig(s, cfg, c.root) }); err != nil {
					log.Printf("apply config: %v", err)
				}
			})
			if err != nil {
				log.Printf("watch config: %v", err)
			}
		}
	}

	app.Run()
	return nil
}
