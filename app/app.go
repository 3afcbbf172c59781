// Package app ties the viewer together: it owns the window surface, the GPU
// renderer, the orbit camera and the load pipeline, and advances all of them
// once per frame.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/ColinFirth5566/3D-SFM/config"
	"github.com/ColinFirth5566/3D-SFM/core"
	"github.com/ColinFirth5566/3D-SFM/gpu"
	"github.com/ColinFirth5566/3D-SFM/splat"
)

type App struct {
	cfg config.Config
	log core.Logger

	window   *glfw.Window
	ctx      *gpu.Context
	renderer *gpu.Renderer
	camera   *core.OrbitCamera
	state    *core.StateHolder
	text     *core.TextRasterizer
	loader   *Loader

	model       *gpu.Model
	modelCenter mgl32.Vec3
	modelRadius float32

	debug     bool
	hudDirty  bool
	lastFrame time.Time
	fpsFrames int
	fpsSince  time.Time
	fps       float64

	shutdown bool
}

func NewApp(window *glfw.Window, cfg config.Config, log core.Logger, debug bool) (*App, error) {
	if log == nil {
		log = core.NewNopLogger()
	}

	w, h := window.GetFramebufferSize()
	w, h = capPixelRatio(window, w, h, cfg.Points.MaxPixelRatio)

	ctx, err := gpu.NewContext(window, w, h)
	if err != nil {
		return nil, err
	}
	renderer, err := gpu.NewRenderer(ctx)
	if err != nil {
		ctx.Release()
		return nil, err
	}

	var text *core.TextRasterizer
	if cfg.Hud.Enabled {
		text, err = core.NewTextRasterizer(cfg.Hud.FontPath, 13)
		if err != nil {
			log.Warnf("hud font unavailable, overlay disabled: %v", err)
		}
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		window:   window,
		ctx:      ctx,
		renderer: renderer,
		camera:   core.NewOrbitCamera(),
		text:     text,
		loader:   NewLoader(splat.Options{SizeScale: cfg.Points.SizeScale}),
		debug:    debug,
		hudDirty: true,
		fpsSince: time.Now(),
	}
	a.state = core.NewStateHolder(func(core.ViewerState) { a.hudDirty = true })
	a.installCallbacks()
	return a, nil
}

// Load starts fetching and decoding a splat source. Any load already in
// flight is superseded, and the previous model is torn down before the new
// fetch begins so no stale frame outlives its source.
func (a *App) Load(source string) {
	if a.shutdown {
		return
	}
	a.log.Infof("loading %s", source)
	a.dropModel()
	a.state.SetLoading()
	a.loader.Start(source)
}

func (a *App) dropModel() {
	if a.model == nil {
		return
	}
	a.model.Release()
	a.model = nil
}

// Frame runs one iteration of the viewer loop: poll input, settle any
// finished load, advance camera damping, refresh the HUD and present.
func (a *App) Frame() {
	if a.shutdown {
		return
	}
	glfw.PollEvents()
	a.pollLoads()

	a.camera.Update(float32(a.cfg.Camera.Damping))
	a.refreshHud()

	u := a.cameraUniform()
	if err := a.renderer.Frame(a.model, &u); err != nil {
		a.log.Errorf("frame: %v", err)
	}
	a.countFrame()
}

func (a *App) pollLoads() {
	for {
		select {
		case res := <-a.loader.Results():
			if res.Generation != a.loader.Generation() {
				a.log.Debugf("dropping stale load result for %s", res.Source)
				continue
			}
			a.applyLoad(res)
		default:
			return
		}
	}
}

// applyLoad settles a finished load. The old model was already dropped
// when the load started, so a failure renders the error HUD over an empty
// scene; a partial cloud is never uploaded.
func (a *App) applyLoad(res LoadResult) {
	if res.Err != nil {
		msg := loadErrorMessage(res.Err)
		a.log.Errorf("load %s: %v", res.Source, res.Err)
		a.dropModel()
		a.state.SetFailed(msg)
		return
	}

	model, err := gpu.UploadModel(a.ctx, res.Cloud)
	if err != nil {
		a.log.Errorf("upload %s: %v", res.Source, err)
		a.dropModel()
		a.state.SetFailed(loadErrorMessage(err))
		return
	}

	a.dropModel()
	a.model = model
	a.modelCenter, a.modelRadius = splat.BoundingSphere(res.Cloud.Positions)
	a.camera.MinDistance = float32(a.cfg.Camera.MinDistanceFactor) * a.modelRadius
	a.camera.FrameSphere(a.modelCenter, a.modelRadius)
	a.state.SetLoaded(res.Cloud.Count)
	a.log.Infof("loaded %s: %d points, radius %.3f", res.Source, res.Cloud.Count, a.modelRadius)
}

func (a *App) cameraUniform() gpu.CameraUniform {
	width := float32(a.ctx.Config.Width)
	height := float32(a.ctx.Config.Height)
	right, up := a.camera.Axes()
	return gpu.CameraUniform{
		ViewProj:     a.camera.ViewProj(width / height),
		Right:        right,
		Up:           up,
		BaseRadius:   float32(a.cfg.Points.BaseSizeFactor) * a.modelRadius,
		InvSizeScale: float32(1.0 / a.cfg.Points.SizeScale),
	}
}

func (a *App) refreshHud() {
	if a.text == nil {
		return
	}
	if a.debug {
		// FPS changes every second, so the overlay is redrawn then.
		a.hudDirty = true
	}
	if !a.hudDirty {
		return
	}
	a.hudDirty = false

	lines := a.hudLines()
	if len(lines) == 0 {
		if err := a.renderer.Hud().SetMask(nil); err != nil {
			a.log.Warnf("hud update: %v", err)
		}
		return
	}
	img, changed := a.text.Render(lines)
	if !changed {
		return
	}
	if err := a.renderer.Hud().SetMask(img); err != nil {
		a.log.Warnf("hud update: %v", err)
	}
}

func (a *App) hudLines() []string {
	s := a.state.Get()
	var lines []string
	switch {
	case s.Err != "":
		lines = append(lines, "error: "+s.Err)
	case s.Loading:
		lines = append(lines, "loading...")
	case s.PointCount > 0:
		lines = append(lines, fmt.Sprintf("%d points", s.PointCount))
	}
	if a.debug {
		lines = append(lines, fmt.Sprintf("%.0f fps", a.fps))
	}
	return lines
}

func (a *App) countFrame() {
	a.fpsFrames++
	if elapsed := time.Since(a.fpsSince); elapsed >= time.Second {
		a.fps = float64(a.fpsFrames) / elapsed.Seconds()
		a.fpsFrames = 0
		a.fpsSince = time.Now()
		if a.debug {
			a.log.Debugf("%.1f fps, %d frames submitted", a.fps, a.renderer.FramesSubmitted())
		}
	}
}

// Resize reconfigures the surface for a new framebuffer size, applying the
// pixel-ratio cap.
func (a *App) Resize(width, height int) {
	if a.shutdown {
		return
	}
	width, height = capPixelRatio(a.window, width, height, a.cfg.Points.MaxPixelRatio)
	a.ctx.Resize(width, height)
}

// Reframe re-centers the camera on the current model.
func (a *App) Reframe() {
	if a.model == nil {
		return
	}
	a.camera.FrameSphere(a.modelCenter, a.modelRadius)
}

// Shutdown releases everything the viewer owns. Ordering matters: the load
// pipeline and input callbacks go first so nothing can touch GPU objects
// mid-release, the surface context goes last. Safe to call more than once.
func (a *App) Shutdown() {
	if a.shutdown {
		return
	}
	a.shutdown = true

	a.loader.Close()
	a.removeCallbacks()

	// Acquisition order; ReleaseAll walks it backwards so the model goes
	// before the renderer and the surface context goes last.
	gpu.ReleaseAll([]gpu.Releasable{a.ctx, a.renderer, a.model})
	a.model = nil
}

// capPixelRatio shrinks the drawing buffer when the monitor content scale
// exceeds the configured cap, trading sharpness for fill rate on dense
// displays.
func capPixelRatio(window *glfw.Window, width, height int, maxRatio float64) (int, int) {
	sx, _ := window.GetContentScale()
	scale := float64(sx)
	if scale <= maxRatio || scale <= 0 {
		return width, height
	}
	f := maxRatio / scale
	w := int(float64(width) * f)
	h := int(float64(height) * f)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// loadErrorMessage collapses the load error taxonomy into one HUD line.
func loadErrorMessage(err error) string {
	var fe *splat.FetchError
	if errors.As(err, &fe) {
		if fe.Status != 0 {
			return fmt.Sprintf("fetch failed: HTTP %d", fe.Status)
		}
		return "fetch failed: " + fe.Err.Error()
	}
	var me *splat.MalformedError
	if errors.As(err, &me) {
		return "malformed splat file: " + me.Reason
	}
	var ie *gpu.InitError
	if errors.As(err, &ie) {
		return "renderer error: " + ie.Error()
	}
	return err.Error()
}
