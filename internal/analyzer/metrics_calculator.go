package analyzer

import (
	"image"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// glareLevel is the gray level treated as a specular highlight
const glareLevel = 250

// CaptureMetrics describes how well a photograph was taken, independent of what it shows
type CaptureMetrics struct {
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Brightness     float64    `json:"brightness"`
	LaplacianVar   float64    `json:"laplacian_variance"`
	AvgSaturation  float64    `json:"average_saturation"`
	GlareFraction  float64    `json:"glare_fraction"`
	ChannelBalance [3]float64 `json:"channel_balance"`
}

// metricsCalculator implements MetricsCalculator using gonum statistics
type metricsCalculator struct {
	slicePool sync.Pool
}

// NewMetricsCalculator creates a new capture metrics calculator
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// Calculate computes capture metrics, processing horizontal strips in parallel
func (mc *metricsCalculator) Calculate(img image.Image) CaptureMetrics {
	if checkDimensions(img) != nil {
		return CaptureMetrics{}
	}
	src := imaging.Clone(img)
	width, height := src.Rect.Dx(), src.Rect.Dy()

	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers

	type stripResult struct {
		gray, sat, r, g, b float64
		glare              int
	}

	results := make(chan stripResult, numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if endY > height {
			endY = height
		}
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()

			var res stripResult
			for y := startY; y < endY; y++ {
				row := src.Pix[y*src.Stride : y*src.Stride+width*4]
				for x := 0; x < width; x++ {
					rf := float64(row[x*4]) / 255
					gf := float64(row[x*4+1]) / 255
					bf := float64(row[x*4+2]) / 255

					_, s, _ := rgbToHSV(rf, gf, bf)
					lum := 255 * (0.299*rf + 0.587*gf + 0.114*bf)
					res.sat += s
					res.gray += lum
					res.r += rf
					res.g += gf
					res.b += bf
					if lum >= glareLevel {
						res.glare++
					}
				}
			}
			results <- res
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total stripResult
	for res := range results {
		total.gray += res.gray
		total.sat += res.sat
		total.r += res.r
		total.g += res.g
		total.b += res.b
		total.glare += res.glare
	}

	n := float64(width * height)
	return CaptureMetrics{
		Width:          width,
		Height:         height,
		Brightness:     total.gray / n,
		LaplacianVar:   mc.laplacianVariance(imaging.Grayscale(src)),
		AvgSaturation:  total.sat / n,
		GlareFraction:  float64(total.glare) / n,
		ChannelBalance: [3]float64{total.r / n, total.g / n, total.b / n},
	}
}

// laplacianVariance is the focus measure: variance of the 4-neighbour Laplacian
func (mc *metricsCalculator) laplacianVariance(gray *image.NRGBA) float64 {
	width, height := gray.Rect.Dx(), gray.Rect.Dy()
	if width < 3 || height < 3 {
		return 0
	}

	data := mc.slicePool.Get().([]float64)[:0]
	defer func() { mc.slicePool.Put(data[:0]) }()

	at := func(x, y int) float64 {
		return float64(gray.Pix[y*gray.Stride+x*4])
	}

	// Laplacian kernel: [0, 1, 0; 1, -4, 1; 0, 1, 0]
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			laplacian := -4*at(x, y) + at(x, y-1) + at(x, y+1) + at(x-1, y) + at(x+1, y)
			data = append(data, laplacian)
		}
	}

	return stat.Variance(data, nil)
}
