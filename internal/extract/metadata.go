package extract

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
)

// metadataExtractor produces a type-specific metadata map for one file,
// or nil when the file yields nothing useful.
type metadataExtractor func(path string) map[string]interface{}

// extractors is keyed by the top-level MIME class. Registering a new
// class here is the only change needed to extend per-type metadata.
var extractors = map[string]metadataExtractor{
	"image": imageMetadata,
}

// specificMetadata dispatches on the MIME class ("image" from
// "image/png"). Extraction failures return nil so only this field is
// lost, never the whole record.
func specificMetadata(path, mimeType string) map[string]interface{} {
	class, _, ok := strings.Cut(mimeType, "/")
	if !ok {
		return nil
	}
	fn, ok := extractors[class]
	if !ok {
		return nil
	}
	return fn(path)
}

func imageMetadata(path string) map[string]interface{} {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil
	}

	meta := map[string]interface{}{
		"format": strings.ToUpper(format),
		"mode":   colorMode(cfg.ColorModel),
		"size":   fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
	}

	if tags := exifTags(path); len(tags) > 0 {
		meta["exif"] = tags
	}
	return meta
}

// colorMode names the pixel layout in the same vocabulary common image
// tooling uses.
func colorMode(model color.Model) string {
	switch model {
	case color.GrayModel, color.Gray16Model:
		return "L"
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model:
		return "RGBA"
	case color.CMYKModel:
		return "CMYK"
	case color.YCbCrModel:
		return "RGB"
	}
	if _, ok := model.(color.Palette); ok {
		return "P"
	}
	return "RGB"
}

// exifTags pulls the printable EXIF fields from a JPEG or TIFF. Other
// formats simply have no EXIF block and return nothing.
func exifTags(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	tags := make(map[string]string)
	for _, name := range []exif.FieldName{
		exif.Make, exif.Model, exif.DateTime, exif.Software,
		exif.PixelXDimension, exif.PixelYDimension, exif.Orientation,
	} {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		tags[string(name)] = strings.Trim(tag.String(), `"`)
	}
	return tags
}
