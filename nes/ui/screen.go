package ui

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"gnes/nes/common"
)

const (
	screenFrameRatio = 3
	screenXWidth     = common.FrameXWidth * screenFrameRatio
	screenYHeight    = common.FrameYHeight * screenFrameRatio
)

// GoNes is the slice of the machine the screen drives: key state pokes and
// asynchronous requests.
type GoNes interface {
	Poke(controllerId uint8, button uint8, pressed bool)
	Request(request common.NesOpRequest)
}

type Screen struct {
	nes GoNes

	fb *common.Framebuffer

	// window where we draw the sprite
	window *pixelgl.Window

	// front and back buffers, wrapping the framebuffer's RGBA planes
	buffer0 *pixel.PictureData
	buffer1 *pixel.PictureData
	sprite  *pixel.Sprite

	// FPS stats
	fpsChannel   <-chan time.Time
	fpsLastFrame int
}

func (s *Screen) Init(nes GoNes, fb *common.Framebuffer) {
	s.nes = nes
	s.fb = fb

	s.buffer0 = &pixel.PictureData{
		Pix:    fb.Buffer0,
		Stride: common.FrameXWidth,
		Rect:   pixel.R(0, 0, common.FrameXWidth, common.FrameYHeight),
	}
	s.buffer1 = &pixel.PictureData{
		Pix:    fb.Buffer1,
		Stride: common.FrameXWidth,
		Rect:   pixel.R(0, 0, common.FrameXWidth, common.FrameYHeight),
	}
	s.updateSprite()
}

// Run hands the render thread to pixelgl; the machine loop keeps running on
// its own goroutine.
func (s *Screen) Run() {
	go func() {
		runtime.LockOSThread()
		pixelgl.Run(s.runThread)
		os.Exit(0)
	}()
}

func (s *Screen) runThread() {
	cfg := pixelgl.WindowConfig{
		Title:  "gnes",
		Bounds: pixel.R(0, 0, screenXWidth, screenYHeight),
		VSync:  true,
	}
	window, err := pixelgl.NewWindow(cfg)
	if err != nil {
		panic(err)
	}

	s.window = window
	s.fpsChannel = time.Tick(time.Second)
	s.fpsLastFrame = 0

	s.runner()
}

func (s *Screen) runner() {
	lastLoopFrames := 0
	for !s.window.Closed() {

		select {
		case <-s.fb.FrameUpdated:
		case <-time.After(time.Second / 10):
			// keep polling input and the close box when the machine stalls
		}

		if s.fb.Frames > lastLoopFrames {
			s.draw()
			lastLoopFrames = s.fb.Frames
		}
		s.window.Update()

		s.updateFpsTitle()
		s.updateControllers()
	}

	s.nes.Request(common.StopRequest)
}

var buttons = [8]struct {
	id  uint8
	key pixelgl.Button
}{
	{common.BitA, pixelgl.KeyS},
	{common.BitB, pixelgl.KeyA},
	{common.BitSelect, pixelgl.KeyLeftShift},
	{common.BitStart, pixelgl.KeyEnter},
	{common.BitUp, pixelgl.KeyUp},
	{common.BitDown, pixelgl.KeyDown},
	{common.BitLeft, pixelgl.KeyLeft},
	{common.BitRight, pixelgl.KeyRight},
}

func (s *Screen) updateControllers() {
	for _, button := range buttons {
		s.nes.Poke(0, button.id, s.window.Pressed(button.key))
	}

	if s.window.Pressed(pixelgl.KeyLeftControl) && s.window.JustPressed(pixelgl.KeyR) {
		s.nes.Request(common.ResetRequest)
	}
}

func (s *Screen) updateFpsTitle() {
	select {
	case <-s.fpsChannel:
		frames := s.fb.Frames - s.fpsLastFrame
		s.fpsLastFrame = s.fb.Frames

		s.window.SetTitle(fmt.Sprintf("gnes | FPS: %d", frames))
	default:
	}
}

func (s *Screen) draw() {
	s.updateSprite()

	s.window.Clear(colornames.Black)
	s.sprite.Draw(s.window, pixel.IM.
		Moved(s.window.Bounds().Center()).
		ScaledXY(s.window.Bounds().Center(), pixel.V(screenFrameRatio, screenFrameRatio)))
}

func (s *Screen) updateSprite() {
	if s.fb.FrameIndex == 1 {
		// the ppu is painting buffer1, the stable data is in buffer0
		s.sprite = pixel.NewSprite(s.buffer0, pixel.R(0, 0, common.FrameXWidth, common.FrameYHeight))
	} else {
		s.sprite = pixel.NewSprite(s.buffer1, pixel.R(0, 0, common.FrameXWidth, common.FrameYHeight))
	}
}
