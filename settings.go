package main

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"gamescale/scaler"
)

type Settings struct {
	LogicalWidth        float64 `json:"logicalWidth"`
	LogicalHeight       float64 `json:"logicalHeight"`
	MinScale            float64 `json:"minScale"`
	MaxScale            float64 `json:"maxScale"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Padding             float64 `json:"padding"`
	EnableSafeArea      bool    `json:"enableSafeArea"`
	DebounceMs          float64 `json:"debounceMs"`
	LinearFilter        bool    `json:"linearFilter"`

	Addr       string  `json:"addr"`
	CellWidth  float64 `json:"cellWidth"`
	CellHeight float64 `json:"cellHeight"`
	Theme      string  `json:"theme"`
	Language   string  `json:"language"`
}

func defaultSettings() Settings {
	s := Settings{
		Addr:       ":8080",
		CellWidth:  8,
		CellHeight: 16,
		Language:   "en",
	}
	s.setConfig(scaler.DefaultConfig())
	return s
}

// loadSettings overlays the file at path on the defaults. A missing file is
// not an error; an unreadable or malformed one is logged and ignored.
func loadSettings(path string) Settings {
	s := defaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logError("load settings: %v", err)
		}
		return s
	}
	if err := json.Unmarshal(data, &s); err != nil {
		logError("load settings %s: %v", path, err)
		return defaultSettings()
	}
	return s
}

func saveSettings(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// config converts the scaling fields and validates them.
func (s Settings) config() (scaler.Config, error) {
	cfg := scaler.Config{
		LogicalSize:         scaler.Size{Width: s.LogicalWidth, Height: s.LogicalHeight},
		MinScale:            s.MinScale,
		MaxScale:            s.MaxScale,
		MaintainAspectRatio: s.MaintainAspectRatio,
		Padding:             s.Padding,
		EnableSafeArea:      s.EnableSafeArea,
		Debounce:            time.Duration(s.DebounceMs * float64(time.Millisecond)),
	}
	return cfg, cfg.Validate()
}

func (s *Settings) setConfig(cfg scaler.Config) {
	s.LogicalWidth = cfg.LogicalSize.Width
	s.LogicalHeight = cfg.LogicalSize.Height
	s.MinScale = cfg.MinScale
	s.MaxScale = cfg.MaxScale
	s.MaintainAspectRatio = cfg.MaintainAspectRatio
	s.Padding = cfg.Padding
	s.EnableSafeArea = cfg.EnableSafeArea
	s.DebounceMs = float64(cfg.Debounce) / float64(time.Millisecond)
}
