package utvideo

// Prediction option values accepted by Parameters. They follow the
// conventional encoder option numbering; gradient and plane are
// recognized but rejected because the encoder cannot produce them.
const (
	PredictionNone     = 0
	PredictionLeft     = 1
	PredictionMedian   = 2
	PredictionGradient = 3
	PredictionPlane    = 4
)

// Parameters holds the encoder options.
type Parameters struct {
	// Prediction selects the per-plane predictor (PredictionNone,
	// PredictionLeft or PredictionMedian).
	Prediction int

	// Slices is the number of horizontal strips each plane is coded
	// in. 0 selects the default of 1.
	Slices int
}

// NewParameters returns the default parameters: left prediction, one
// slice per plane.
func NewParameters() *Parameters {
	return &Parameters{
		Prediction: PredictionLeft,
		Slices:     1,
	}
}

// Validate checks that the options can be encoded.
func (p *Parameters) Validate() error {
	if p.Prediction < PredictionNone || p.Prediction > PredictionPlane {
		return ErrUnsupportedPrediction
	}
	switch predOrder[p.Prediction] {
	case predGradient, predPlane:
		return ErrUnsupportedPrediction
	}
	if p.Slices < 0 || p.Slices > 256 {
		return ErrInvalidSliceCount
	}
	return nil
}
