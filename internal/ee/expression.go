package ee

// Image is an opaque handle to a server-side expression. Local code only ever
// hands it back to the service (for a reduction or a tile session); it is
// never serialized on its own, compared, or inspected.
type Image struct {
	expr map[string]interface{}
}

// ImageCollection builds a server-side collection expression for a catalog
// dataset, e.g. "COPERNICUS/S5P/OFFL/L3_CH4".
type ImageCollection struct {
	expr map[string]interface{}
}

func NewImageCollection(dataset string) *ImageCollection {
	return &ImageCollection{expr: invocation("ImageCollection.load", args{"id": dataset})}
}

// FilterDate restricts the collection to the half-open interval [start, end).
func (c *ImageCollection) FilterDate(start, end string) *ImageCollection {
	return &ImageCollection{expr: invocation("Collection.filter", args{
		"collection": c.expr,
		"filter":     invocation("Filter.date", args{"start": start, "end": end}),
	})}
}

func (c *ImageCollection) Select(band string) *ImageCollection {
	return &ImageCollection{expr: invocation("ImageCollection.select", args{
		"input":         c.expr,
		"bandSelectors": []string{band},
	})}
}

// Mean reduces the collection to its per-pixel temporal mean composite.
func (c *ImageCollection) Mean() *Image {
	return &Image{expr: invocation("reduce.mean", args{"collection": c.expr})}
}

// Gt converts the image to a binary mask: 1 where the pixel value exceeds
// the threshold, 0 elsewhere.
func (img *Image) Gt(threshold float64) *Image {
	return &Image{expr: invocation("Image.gt", args{
		"image1": img.expr,
		"image2": invocation("Image.constant", args{"value": threshold}),
	})}
}

func (img *Image) Multiply(other *Image) *Image {
	return &Image{expr: invocation("Image.multiply", args{
		"image1": img.expr,
		"image2": other.expr,
	})}
}

// PixelArea is the image whose pixel values are the area of that pixel in
// square meters. Summing it over a geometry yields the geometry's area.
func PixelArea() *Image {
	return &Image{expr: invocation("Image.pixelArea", args{})}
}

type args map[string]interface{}

func invocation(name string, a args) map[string]interface{} {
	return map[string]interface{}{
		"functionInvocationValue": map[string]interface{}{
			"functionName": name,
			"arguments":    a,
		},
	}
}
