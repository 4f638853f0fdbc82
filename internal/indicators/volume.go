package indicators

// VolumeRatio compares the latest volume against the trailing average of
// the previous period bars. A ratio above 1 means above-average activity.
func VolumeRatio(volumes []float64, period int) (float64, error) {
	if period <= 0 || len(volumes) < period+1 {
		return 0, ErrInsufficientData
	}

	avg, err := SMA(volumes[:len(volumes)-1], period)
	if err != nil {
		return 0, err
	}
	if avg == 0 {
		return 0, ErrInsufficientData
	}

	return volumes[len(volumes)-1] / avg, nil
}
