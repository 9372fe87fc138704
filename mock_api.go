package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
)

// CreateMockAPI starts a local stand-in for the timing API, useful for
// trying the pipeline without hammering the real service. Point
// F1_API_DOMAIN at it and set F1_FETCH_DELAY=0.
func CreateMockAPI(port int) {
	go createMockAPIServer(port)
}

func createMockAPIServer(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/schedule", handleMockSchedule)
	mux.HandleFunc("/v1/laps", handleMockLaps)
	mux.HandleFunc("/v1/weather", handleMockWeather)
	mux.HandleFunc("/v1/results", handleMockResults)

	fmt.Printf("Starting mock API in port %d\n", port)
	_ = http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}

var mockDrivers = []struct {
	Code string
	Team string
}{
	{"VER", "Red Bull Racing"},
	{"LEC", "Ferrari"},
	{"HAM", "Mercedes"},
	{"ALO", "Aston Martin"},
	{"GAS", "Alpine"},
}

func handleMockSchedule(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	writeMockJSON(w, map[string]interface{}{
		"year": year,
		"events": []map[string]interface{}{
			{"round": 1, "name": "Bahrain Grand Prix", "country": "Bahrain", "location": "Sakhir"},
			{"round": 2, "name": "Italian Grand Prix", "country": "Italy", "location": "Monza"},
			{"round": 3, "name": "Abu Dhabi Grand Prix", "country": "UAE", "location": "Yas Marina"},
		},
	})
}

func handleMockLaps(w http.ResponseWriter, r *http.Request) {
	rng := mockRand(r)
	laps := []map[string]interface{}{}
	for _, driver := range mockDrivers {
		for lap := 1; lap <= 5; lap++ {
			seconds := 80 + rng.Float64()*5
			laps = append(laps, map[string]interface{}{
				"driver":    driver.Code,
				"team":      driver.Team,
				"lapNumber": lap,
				"lapTime":   fmt.Sprintf("1:%06.3f", seconds-60),
				"startTime": float64(lap) * seconds,
			})
		}
	}
	writeMockJSON(w, map[string]interface{}{"laps": laps})
}

func handleMockWeather(w http.ResponseWriter, r *http.Request) {
	rng := mockRand(r)
	samples := []map[string]interface{}{}
	for i := 0; i < 10; i++ {
		samples = append(samples, map[string]interface{}{
			"time":      float64(i) * 60,
			"trackTemp": 30 + rng.Float64()*10,
			"rainfall":  false,
		})
	}
	writeMockJSON(w, map[string]interface{}{"samples": samples})
}

func handleMockResults(w http.ResponseWriter, r *http.Request) {
	results := []map[string]interface{}{}
	for i, driver := range mockDrivers {
		results = append(results, map[string]interface{}{
			"driver":   driver.Code,
			"position": i + 1,
		})
	}
	writeMockJSON(w, map[string]interface{}{"results": results})
}

// mockRand seeds per request URL so repeated fetches of the same session
// return the same laps, like a real cacheable API.
func mockRand(r *http.Request) *rand.Rand {
	seed := int64(0)
	for _, c := range r.URL.RawQuery {
		seed = seed*31 + int64(c)
	}
	return rand.New(rand.NewSource(seed))
}

func writeMockJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
