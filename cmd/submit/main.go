// File: cmd/submit/main.go
//
// Manual smoke client: submits one research request to a running server
// and follows the event stream until the job finishes.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

func main() {
	base := flag.String("addr", "http://localhost:8080", "server base URL")
	input := flag.String("input", "", "company name or URL to research")
	url := flag.String("url", "", "optional known company URL")
	flag.Parse()

	if *input == "" {
		log.Fatal("usage: submit -input 'Company Name' [-url https://...]")
	}

	body, _ := json.Marshal(map[string]string{"input": *input, "url": *url})
	resp, err := http.Post(*base+"/api/v1/research/", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("submit: %v", err)
	}
	defer resp.Body.Close()

	var submitted struct {
		JobID string `json:"job_id"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		log.Fatalf("decode submit response: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		log.Fatalf("submit rejected (%d): %s", resp.StatusCode, submitted.Error)
	}
	log.Printf("job %s submitted, streaming events...", submitted.JobID)

	events, err := http.Get(*base + "/api/v1/research/" + submitted.JobID + "/events")
	if err != nil {
		log.Fatalf("events: %v", err)
	}
	defer events.Body.Close()

	start := time.Now()
	scanner := bufio.NewScanner(events.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "{}" {
			log.Printf("stream closed after %s", time.Since(start).Round(time.Millisecond))
			return
		}

		var snap struct {
			Status        string          `json:"status"`
			StepsComplete []string        `json:"steps_complete"`
			Error         string          `json:"error"`
			FinalReport   json.RawMessage `json:"final_report"`
		}
		if err := json.Unmarshal([]byte(payload), &snap); err != nil {
			log.Printf("bad snapshot: %v", err)
			continue
		}
		log.Printf("status=%s steps=%v", snap.Status, snap.StepsComplete)

		switch snap.Status {
		case "complete":
			var pretty bytes.Buffer
			if err := json.Indent(&pretty, snap.FinalReport, "", "  "); err == nil {
				fmt.Println(pretty.String())
			}
		case "error":
			log.Printf("job failed: %s", snap.Error)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stream: %v", err)
	}
}
