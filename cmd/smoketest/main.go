// Command smoketest exercises a running `docket serve` over HTTP.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var (
	baseURL = flag.String("url", "http://localhost:8080", "Base URL of the docket server")
	root    = flag.String("root", "", "PDF directory to scan, inside the server's scan.root; the scan step is skipped when empty")
	token   = flag.String("token", os.Getenv("DOCKET_API_TOKEN"), "Bearer token when the server requires one")
)

type step struct {
	name     string
	method   string
	endpoint string
	payload  interface{}
	check    func(body []byte) error
}

func main() {
	flag.Parse()

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting smoke test...")

	steps := []step{
		{"Health", "GET", "/healthz", nil, expectKey("status")},
		{"Extract", "POST", "/extract", map[string]string{
			"text": "John Smith met Jane Doe at Acme Inc. Contact: press@example.com https://example.com/a",
		}, expectKey("organizations")},
		{"Resolve", "POST", "/resolve", map[string]string{"name": "John Q. Smith"}, expectKey("resolved")},
	}
	if *root != "" {
		steps = append(steps,
			step{"Scan", "POST", "/scan", map[string]string{"root": *root}, expectKey("report")},
			step{"Report", "GET", "/report", nil, expectKey("summary")},
		)
	}

	for i, s := range steps {
		fmt.Printf("%d. %s...\n", i+1, s.name)
		body, ok := sendRequest(s.method, s.endpoint, s.payload)
		if !ok {
			fmt.Printf("FAILED: %s\n", s.name)
			os.Exit(1)
		}
		if err := s.check(body); err != nil {
			fmt.Printf("FAILED: %s: %v\n", s.name, err)
			os.Exit(1)
		}
		fmt.Printf("PASSED: %s\n", s.name)
	}
}

func expectKey(key string) func([]byte) error {
	return func(body []byte) error {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(body, &m); err != nil {
			return fmt.Errorf("response is not a JSON object: %w", err)
		}
		if _, ok := m[key]; !ok {
			return fmt.Errorf("response has no %q field", key)
		}
		return nil
	}
}

func sendRequest(method, endpoint string, payload interface{}) ([]byte, bool) {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, *baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Response Status: %s\n", resp.Status)
	fmt.Printf("Response Body: %s\n", string(respBody))

	return respBody, resp.StatusCode >= 200 && resp.StatusCode < 300
}
