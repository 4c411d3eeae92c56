//go:build ignore

// Smoke test against a running server:
//
//	SMOKE_TOKEN=<jwt> go run scripts/smoke_chat_api.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/fatih/color"
)

func baseURL() string {
	if v := os.Getenv("SMOKE_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:3000/api"
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func sendRequest(method, url, token string, body interface{}) (*http.Response, map[string]interface{}, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL()+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	var decoded map[string]interface{}
	json.Unmarshal(raw, &decoded)
	return resp, decoded, nil
}

func mustStep(title, method, url, token string, body interface{}) map[string]interface{} {
	color.Yellow("\n%s", title)
	resp, decoded, err := sendRequest(method, url, token, body)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 300 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	prettyPrint(decoded)
	return decoded
}

func main() {
	token := os.Getenv("SMOKE_TOKEN")
	if token == "" {
		color.Red("SMOKE_TOKEN is not set")
		os.Exit(1)
	}

	color.Cyan("Starting chat API smoke test against %s\n", baseURL())

	mustStep("1. Backend status", "GET", "/status", "", nil)

	created := mustStep("2. Create chat", "POST", "/conversations", token, nil)
	var chatID string
	if data, ok := created["data"].(map[string]interface{}); ok {
		chatID, _ = data["id"].(string)
	}
	if chatID == "" {
		color.Red("No chat id returned, aborting")
		os.Exit(1)
	}

	mustStep("3. Completion", "POST", "/conversations/completion", token, map[string]interface{}{
		"chatId": chatID,
		"prompt": "Hello",
	})

	mustStep("4. Rename", "POST", "/conversations/rename", token, map[string]interface{}{
		"chatId": chatID,
		"name":   "Smoke test",
	})

	mustStep("5. Fetch", "GET", "/conversations/"+chatID, token, nil)

	mustStep("6. Delete", "POST", "/conversations/delete", token, map[string]interface{}{
		"chatId": chatID,
	})

	color.Cyan("\nSmoke test finished")
}
