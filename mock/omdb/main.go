// Command omdb serves canned OMDb-shaped responses for local runs.
package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"
)

//go:embed data.json
var jsonData []byte

const apiKey = "mock-key"

type title struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

func main() {
	var titles map[string]title
	if err := json.Unmarshal(jsonData, &titles); err != nil {
		log.Fatalf("[Mock OMDb] invalid data.json: %v", err)
	}

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Simulate network latency (50-200ms)
		time.Sleep(time.Duration(50+time.Now().UnixNano()%150) * time.Millisecond)

		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")

		if q.Get("apikey") != apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			writeBody(w, []byte(`{"Response":"False","Error":"Invalid API key!"}`))
			log.Printf("[Mock OMDb] %s %s - 401 invalid key", r.Method, r.URL.Path)
			return
		}

		kind := q.Get("type")
		entry, ok := titles[strings.ToLower(strings.TrimSpace(q.Get("t")))]
		if !ok || (kind != "" && entry.Type != kind) {
			notFound := "Movie not found!"
			if kind == "series" {
				notFound = "Series not found!"
			}
			body, _ := json.Marshal(map[string]string{"Response": "False", "Error": notFound})
			writeBody(w, body)
			log.Printf("[Mock OMDb] t=%q type=%s - not found", q.Get("t"), kind)
			return
		}

		writeBody(w, entry.Body)
		log.Printf("[Mock OMDb] t=%q type=%s - 200 OK", q.Get("t"), kind)
	})

	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeBody(w, []byte(`{"status":"healthy"}`))
	})

	log.Println("Mock OMDb running on :8081")
	server := &http.Server{
		Addr:         ":8081",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}

func writeBody(w http.ResponseWriter, body []byte) {
	if _, err := w.Write(body); err != nil {
		log.Printf("[Mock OMDb] write error: %v", err)
	}
}
