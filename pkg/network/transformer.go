package network

// Transformer is a two-winding transformer with an off-nominal tap,
// modeled with the convention:
//
//	from   n:1   R+jX      to
//	|------o o---xxxx------|
type Transformer struct {
	FromBus, ToBus *Bus
	R, X           float64 // series impedance, pu on the system base
	N              float64 // off-nominal tap ratio, pu
}

// NewTransformer converts R and X from the transformer's own MVA rating
// to the system base (Zsys = Zown * Sbase/MVA), per spec.md section 3.
func NewTransformer(from, to *Bus, r, x, n, mva, sBase float64) *Transformer {
	return &Transformer{
		FromBus: from,
		ToBus:   to,
		R:       r * sBase / mva,
		X:       x * sBase / mva,
		N:       n,
	}
}

// PiModel returns the series and shunt admittances of the transformer's
// pi-equivalent: Yseries = Y/n, fromY = Y/n^2 - Yseries, toY = Y - Yseries,
// where Y = 1/(R+jX) has already been base-changed to the system base.
func (t *Transformer) PiModel() (ySeries, fromY, toY complex128) {
	y := 1 / complex(t.R, t.X)
	ySeries = y / complex(t.N, 0)
	fromY = y/complex(t.N*t.N, 0) - ySeries
	toY = y - ySeries
	return ySeries, fromY, toY
}
