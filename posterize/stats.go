package posterize

import (
	"gonum.org/v1/gonum/stat"
)

// BandStat summarizes the pixels that ended up in one band.
type BandStat struct {
	Color Color
	// Low and High are the boundaries of the band.
	Low, High float64
	// Pixels is the number of pixels painted with Color.
	Pixels int
	// Mean and StdDev describe the brightness of those pixels. Both are zero
	// for an empty band, and StdDev is zero for a band of one pixel.
	Mean, StdDev float64
}

// Stats runs the band assignment of q over r and p and reports one BandStat
// per palette entry.
func (q Quantizer) Stats(r *Raster, p Palette) ([]BandStat, error) {
	bands, bounds, err := q.Assign(r, p)
	if err != nil {
		return nil, err
	}

	brightness := Brightnesses(r)
	members := make([][]float64, len(p))
	for i, band := range bands {
		if band >= 0 {
			members[band] = append(members[band], brightness[i])
		}
	}

	out := make([]BandStat, len(p))
	for i := range p {
		bs := BandStat{
			Color:  p[i],
			Low:    bounds[i],
			High:   bounds[i+1],
			Pixels: len(members[i]),
		}
		switch len(members[i]) {
		case 0:
		case 1:
			bs.Mean = members[i][0]
		default:
			bs.Mean, bs.StdDev = stat.MeanStdDev(members[i], nil)
		}
		out[i] = bs
	}
	return out, nil
}
