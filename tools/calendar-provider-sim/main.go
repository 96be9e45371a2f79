// calendar-provider-sim serves a Google-Calendar-shaped events listing so the
// sync flow can be exercised locally without real provider credentials. Point
// the service at it with CALENDAR_BASE_URL and sync with any non-empty token.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

func main() {
	var (
		addr   = flag.String("addr", getenv("ADDR", ":9090"), "listen address")
		count  = flag.Int("events", getenvInt("EVENT_COUNT", 3), "number of timed events to serve")
		allDay = flag.Bool("all-day", false, "include an all-day item (should be skipped by the client)")
		broken = flag.Bool("broken", false, "serve one malformed timed item (should fail the fetch)")
	)
	flag.Parse()

	http.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		now := time.Now().UTC().Truncate(time.Hour)
		items := make([]map[string]any, 0, *count+2)
		for i := 0; i < *count; i++ {
			start := now.Add(time.Duration(24*(i+1)) * time.Hour)
			items = append(items, map[string]any{
				"id":      fmt.Sprintf("sim-%d", i),
				"summary": fmt.Sprintf("Simulated meeting %d", i),
				"start":   map[string]string{"dateTime": start.Format(time.RFC3339)},
				"end":     map[string]string{"dateTime": start.Add(time.Hour).Format(time.RFC3339)},
			})
		}
		if *allDay {
			items = append(items, map[string]any{
				"id":      "sim-allday",
				"summary": "All-day block",
				"start":   map[string]string{"date": now.Format("2006-01-02")},
				"end":     map[string]string{"date": now.AddDate(0, 0, 1).Format("2006-01-02")},
			})
		}
		if *broken {
			items = append(items, map[string]any{
				"id":      "sim-broken",
				"summary": "Malformed",
				"start":   map[string]string{"dateTime": "not-a-timestamp"},
				"end":     map[string]string{"dateTime": now.Format(time.RFC3339)},
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"items": items})
	})

	log.Printf("calendar provider simulator listening on %s (events=%d all-day=%v broken=%v)",
		*addr, *count, *allDay, *broken)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal(err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
