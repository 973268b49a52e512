package web

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/engine"
)

// Controller is the slice of the engine the HTTP surface needs. The engine
// satisfies it directly; tests substitute a recorder.
type Controller interface {
	Snapshot(now time.Time) engine.Snapshot
	SetMode(key string)
	SetProfile(key string)
	SetManualSpeed(percent int)
	Toggle()
}

// Handler builds the HTTP surface: the JSON control API plus the legacy
// plain-text routes the ESP32 firmware served, kept so existing dashboards
// keep working unchanged.
func Handler(ctl Controller) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeSnapshot(w, ctl)
	})

	mux.HandleFunc("/api/control/mode", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctl.SetMode(r.FormValue("mode"))
		writeSnapshot(w, ctl)
	})

	mux.HandleFunc("/api/control/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctl.SetProfile(r.FormValue("profile"))
		writeSnapshot(w, ctl)
	})

	mux.HandleFunc("/api/control/speed", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		percent, err := strconv.Atoi(r.FormValue("speed"))
		if err != nil {
			http.Error(w, "speed must be an integer", http.StatusBadRequest)
			return
		}
		ctl.SetManualSpeed(percent)
		writeSnapshot(w, ctl)
	})

	mux.HandleFunc("/api/control/toggle", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctl.Toggle()
		writeSnapshot(w, ctl)
	})

	// Legacy firmware routes. GET everywhere, "OK" bodies on the mutators.
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, ctl)
	})

	mux.HandleFunc("/set", func(w http.ResponseWriter, r *http.Request) {
		percent, err := strconv.Atoi(r.FormValue("speed"))
		if err != nil {
			http.Error(w, "speed must be an integer", http.StatusBadRequest)
			return
		}
		ctl.SetManualSpeed(percent)
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc("/toggle", func(w http.ResponseWriter, r *http.Request) {
		ctl.Toggle()
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("OK"))
	})

	return mux
}

func writeSnapshot(w http.ResponseWriter, ctl Controller) {
	snap := ctl.Snapshot(time.Now())
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
	_, _ = w.Write([]byte("\n"))
}
