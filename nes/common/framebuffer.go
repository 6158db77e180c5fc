package common

import "image/color"

const (
	FrameXWidth  = 256
	FrameYHeight = 240
)

// Framebuffer carries the ppu output to the host screen. The ppu paints
// palette indexes into Pixels, converts them to RGBA on frame commit and
// flips the front/back buffers, so the screen never observes a half painted
// frame.
type Framebuffer struct {
	// palette indexes (0..63), one per screen pixel, ppu private
	Pixels []uint8

	Buffer0 []color.RGBA
	Buffer1 []color.RGBA

	// 0 - buffer0 is the back buffer, 1 - buffer1 is
	FrameIndex int

	// signalled (non blocking) once per committed frame
	FrameUpdated chan bool

	// number of frames committed so far
	Frames int
}

func (f *Framebuffer) Init() {
	f.Pixels = make([]uint8, FrameXWidth*FrameYHeight)
	if f.Buffer0 == nil {
		f.Buffer0 = make([]color.RGBA, FrameXWidth*FrameYHeight)
	}
	if f.Buffer1 == nil {
		f.Buffer1 = make([]color.RGBA, FrameXWidth*FrameYHeight)
	}
	f.FrameIndex = 0
	f.FrameUpdated = make(chan bool, 1)
	f.Frames = 0
}

func (f *Framebuffer) BackBuffer() []color.RGBA {
	if f.FrameIndex == 0 {
		return f.Buffer0
	}
	return f.Buffer1
}

func (f *Framebuffer) FrontBuffer() []color.RGBA {
	if f.FrameIndex == 0 {
		return f.Buffer1
	}
	return f.Buffer0
}

// Commit flips the buffers and signals the host, dropping the signal rather
// than blocking when the host is behind.
func (f *Framebuffer) Commit() {
	f.FrameIndex ^= 1
	f.Frames++

	select {
	case f.FrameUpdated <- true:
	default:
	}
}
