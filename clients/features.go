package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- Feature extraction (/ingest) ---
type IngestSample struct {
	Key     int         `json:"key"`
	Label   string      `json:"label"`
	EMGData [][]float64 `json:"emg_data"`
}
type IngestReq struct {
	Split   string         `json:"split"`
	Samples []IngestSample `json:"samples"`
}
type IngestResp struct {
	Accepted int `json:"accepted"`
}

func (h *HTTP) Ingest(ctx context.Context, url string, in IngestReq) (*IngestResp, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("ingest encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/ingest", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ingest %s: %s", resp.Status, string(body))
	}

	var out IngestResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("ingest decode: %w", err)
	}
	return &out, nil
}
