// view is a terminal 3D viewer for baked scenes.
//
// Controls:
//
//	W/A/S/D or arrow keys  - Move
//	Mouse motion           - Look around
//	Esc / ctrl+c           - Quit
package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

var hudLogger = log.New(os.Stderr, "view: ", log.LstdFlags)

var (
	scenePath string
	targetFPS int
	showHUD   bool
)

func main() {
	root := &cobra.Command{
		Use:   "view",
		Short: "Interactive terminal viewer for baked scanline scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.Flags().StringVar(&scenePath, "scene", "", "path to data.bin (default: search next to the executable)")
	root.Flags().IntVar(&targetFPS, "fps", 60, "target frames per second")
	root.Flags().BoolVar(&showHUD, "hud", true, "show the FPS/polycount HUD overlay")

	if err := root.Execute(); err != nil {
		hudLogger.Fatalf("%v", err)
	}
}

// axis smooths one of the four translation amounts of §4.1 toward a 0/1
// target using a critically damped spring, so a key release decays to zero
// over a few frames instead of snapping.
type axis struct {
	value, vel float64
	target     float64
	spring     harmonica.Spring
}

func newAxis(fps int) axis {
	return axis{spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0)}
}

func (a *axis) update() float64 {
	a.value, a.vel = a.spring.Update(a.value, a.vel, a.target)
	if a.value < 0 {
		a.value = 0
	}
	return a.value
}

func run() error {
	searchPaths := []string{}
	if scenePath != "" {
		searchPaths = []string{scenePath}
	} else {
		searchPaths = scene.SearchPaths(os.Args[0])
	}

	arena, err := scene.Load(searchPaths)
	if err != nil {
		if err == scene.ErrSceneNotFound {
			hudLogger.Printf("no scene found on search paths %v", searchPaths)
			os.Exit(666)
		}
		var malformed *scene.MalformedScene
		if ok := asMalformed(err, &malformed); ok {
			hudLogger.Printf("%v", malformed)
			os.Exit(999)
		}
		return fmt.Errorf("load scene: %w", err)
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	hudWriter := colorprofile.NewWriter(os.Stdout, os.Environ())
	hudStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

	camera := render.NewCamera()
	renderer := render.New(arena, camera)
	pixels := render.NewPixelData(width, height*2)
	fb := render.NewFramebuffer(width, height*2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	up, down, left, right := newAxis(targetFPS), newAxis(targetFPS), newAxis(targetFPS), newAxis(targetFPS)
	var mouseX, mouseY float64

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				pixels.Resize(width, height*2)
				fb = render.NewFramebuffer(width, height*2)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("w"), ev.MatchString("up"):
					up.target = 1
				case ev.MatchString("s"), ev.MatchString("down"):
					down.target = 1
				case ev.MatchString("a"), ev.MatchString("left"):
					left.target = 1
				case ev.MatchString("d"), ev.MatchString("right"):
					right.target = 1
				case ev.MatchString("?"):
					showHUD = !showHUD
				}

			case uv.KeyReleaseEvent:
				switch {
				case ev.MatchString("w"), ev.MatchString("up"):
					up.target = 0
				case ev.MatchString("s"), ev.MatchString("down"):
					down.target = 0
				case ev.MatchString("a"), ev.MatchString("left"):
					left.target = 0
				case ev.MatchString("d"), ev.MatchString("right"):
					right.target = 0
				}

			case uv.MouseMotionEvent:
				mouseX, mouseY = float64(ev.X), float64(ev.Y)
			}
		}
	}()

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	targetDuration := time.Second / time.Duration(targetFPS)
	var fps float64
	var frames int
	fpsWindowStart := time.Now()

	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}

		now := time.Now()

		input := render.Input{
			Up:     up.update(),
			Down:   down.update(),
			Left:   left.update(),
			Right:  right.update(),
			MouseX: mouseX,
			MouseY: mouseY,
		}

		renderer.Render(pixels, input)
		fb.BlitFrom(pixels)
		area := uv.Rectangle(image.Rect(0, 0, width, height))
		fb.Draw(term, area)
		term.Display()

		frames++
		if elapsed := time.Since(fpsWindowStart); elapsed >= time.Second {
			fps = float64(frames) / elapsed.Seconds()
			frames = 0
			fpsWindowStart = now
		}
		if showHUD {
			hudLine := hudStyle.Render(fmt.Sprintf(" %.0f FPS  %d tris ", fps, arena.TriangleCount()))
			fmt.Fprint(hudWriter, "\x1b[1;1H\x1b[2K"+hudLine)
		}

		if since := time.Since(now); since < targetDuration {
			time.Sleep(targetDuration - since)
		}
	}
}

// asMalformed reports whether err is a *scene.MalformedScene, writing it
// into out on success.
func asMalformed(err error, out **scene.MalformedScene) bool {
	return errors.As(err, out)
}
