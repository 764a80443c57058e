package clients

import (
	"net/http"
	"time"
)

// HTTP talks to the services downstream of the segmentation pipeline.
type HTTP struct{ c *http.Client }

func NewHTTP() *HTTP { return &HTTP{c: &http.Client{Timeout: 60 * time.Second}} }
