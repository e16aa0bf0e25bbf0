package expr

import "fmt"

// LatentScaleFactor is the spatial upsampling between a latent and the image it
// decodes to. Latent width/height are reported in image pixels.
const LatentScaleFactor = 8

// Shape is a tensor shape descriptor. Only its length and extents are used.
type Shape []int

// Dimensioned is implemented by composite bindings that expose a width and height.
type Dimensioned interface {
	Dimensions() (width, height int, err error)
}

// Latent is a latent batch with samples laid out as [B, C, H, W].
type Latent struct {
	Samples Shape `json:"samples" mapstructure:"samples"`
}

// Dimensions reports the decoded image size of the latent.
func (l Latent) Dimensions() (int, int, error) {
	if len(l.Samples) < 4 {
		return 0, 0, fmt.Errorf("latent samples need a [B, C, H, W] shape, got %v", []int(l.Samples))
	}
	return l.Samples[3] * LatentScaleFactor, l.Samples[2] * LatentScaleFactor, nil
}

// Image is an image batch laid out as [B, H, W, C].
type Image struct {
	Shape Shape `json:"shape" mapstructure:"shape"`
}

// Dimensions reports the pixel size of the image.
func (i Image) Dimensions() (int, int, error) {
	if len(i.Shape) < 3 {
		return 0, 0, fmt.Errorf("image needs a [B, H, W, C] shape, got %v", []int(i.Shape))
	}
	return i.Shape[2], i.Shape[1], nil
}

var (
	_ Dimensioned = Latent{}
	_ Dimensioned = Image{}
)
