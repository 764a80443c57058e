package segment

// ActionRecord is one labelled action instance recorded by two EMG sensors.
// Both streams are [T][C] with time along the first axis and are assumed to
// cover the same wall-clock span, DurationS.
type ActionRecord struct {
	Label      string      `json:"label"`
	Index      int         `json:"index"`
	StartTimeS float64     `json:"start_time_s"`
	EndTimeS   float64     `json:"end_time_s"`
	DurationS  float64     `json:"duration_s"`
	EMGLeft    [][]float64 `json:"emg_data_left"`
	EMGRight   [][]float64 `json:"emg_data_right"`
}

// SubactionRecord is one window carved out of an ActionRecord. EMGData holds
// the left channels followed by the right channels.
type SubactionRecord struct {
	Label      string      `json:"label"`
	Index      int         `json:"index"`
	StartTimeS float64     `json:"start_time_s"`
	EndTimeS   float64     `json:"end_time_s"`
	DurationS  float64     `json:"duration_s"`
	EMGData    [][]float64 `json:"emg_data"`
}

// Window describes how one subaction is cut. Label bounds (StartTimeS,
// EndTimeS) advance by a constant stride of segment-overlap seconds while
// row bounds advance by RowsPerWindow, so the two only line up
// approximately.
type Window struct {
	I          int
	StartTimeS float64
	EndTimeS   float64
	RowStart   int
	RowEnd     int
	LeftRows   int
	RightRows  int
	// Rows is min(LeftRows, RightRows); zero means the window is dropped.
	Rows int
}
