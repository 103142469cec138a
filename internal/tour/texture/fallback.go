package texture

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/salehouse/tour3d/internal/tour/faces"
)

// fallbackSize is the edge of generated placeholder faces.
const fallbackSize = 512

// Flat panel colors per face, matching the viewer's placeholder cubemap.
var fallbackColors = [faces.Count]color.RGBA{
	faces.PosX: {0x2e, 0x7d, 0x32, 0xff},
	faces.NegX: {0xf5, 0xf5, 0xf5, 0xff},
	faces.PosY: {0x33, 0x33, 0x33, 0xff},
	faces.NegY: {0xe0, 0xe0, 0xe0, 0xff},
	faces.PosZ: {0x2e, 0x7d, 0x32, 0xff},
	faces.NegZ: {0xf5, 0xf5, 0xf5, 0xff},
}

// Fallback generates the placeholder texture substituted when a face image
// fails to load: a flat color panel labeled with the face name and the room
// name, so a broken upload is visible but never blank.
func Fallback(face faces.Face, roomName string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fallbackSize, fallbackSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(fallbackColors[face]), image.Point{}, draw.Src)

	if roomName == "" {
		roomName = "Room"
	}
	drawCentered(img, face.Label(), fallbackSize/2)
	drawCentered(img, roomName, fallbackSize/2+60)
	return img
}

func drawCentered(img *image.RGBA, text string, y int) {
	face := basicfont.Face7x13
	w := font.MeasureString(face, text).Ceil()
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P((img.Bounds().Dx()-w)/2, y),
	}
	d.DrawString(text)
}
