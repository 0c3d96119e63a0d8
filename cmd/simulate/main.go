package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

const (
	baseURL   = "http://localhost:3000/api"
	secretKey = "dev-secret"
	lectureID = 42
	pdfPath   = "uploads/sample-lecture.pdf"
)

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, url string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, baseURL+url, bodyReader)
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-AI-SECRET-KEY", secretKey)

	client := &http.Client{} // No timeout, generation can be slow
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

type envelope struct {
	Data struct {
		Status     string `json:"status"`
		Content    string `json:"content"`
		QuestionId string `json:"question_id"`
		Question   string `json:"question"`
		HasMore    bool   `json:"has_more"`
	} `json:"data"`
}

func main() {
	color.Cyan("🚀 Starting Lecture Delivery Simulation\n")

	// 1. Initialize the lecture session
	color.Yellow("\n[1] Initialize lecture %d", lectureID)
	initReq := map[string]interface{}{
		"lecture_id": lectureID,
		"pdf_path":   pdfPath,
	}
	resp, body, err := sendRequest("POST", "/lecture/v1/initialize", initReq)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	// 2. Poll until completion, answering every question with a canned reply
	color.Yellow("\n[2] Poll for content")
	for i := 0; i < 200; i++ {
		resp, body, err = sendRequest("GET", fmt.Sprintf("/lecture/v1/%d/next", lectureID), nil)
		if err != nil {
			color.Red("Failed: %v", err)
			os.Exit(1)
		}
		if resp.StatusCode != 200 {
			color.Red("API Error %s", resp.Status)
			prettyPrint(body)
			os.Exit(1)
		}

		var env envelope
		json.Unmarshal(body, &env)

		switch env.Data.Status {
		case "processing":
			fmt.Print(".")
			time.Sleep(2 * time.Second)

		case "content":
			fmt.Println()
			color.Green("LECTURER: %s", env.Data.Content)

		case "question":
			fmt.Println()
			color.Magenta("QUESTION (%s): %s", env.Data.QuestionId, env.Data.Question)

			fmt.Print("Your answer > ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			answer = strings.TrimSpace(answer)
			if answer == "" {
				answer = "I think it relates to the main concept of this chapter."
			}

			answerReq := map[string]interface{}{
				"question_id": env.Data.QuestionId,
				"answer":      answer,
			}
			resp, body, err = sendRequest("POST", fmt.Sprintf("/lecture/v1/%d/answer", lectureID), answerReq)
			if err != nil {
				color.Red("Failed: %v", err)
				os.Exit(1)
			}
			color.Green("Evaluation (%s):", resp.Status)
			prettyPrint(body)

		case "completed":
			fmt.Println()
			color.Cyan("🎉 Lecture completed")

			// 3. Dump the final session snapshot
			color.Yellow("\n[3] Session snapshot")
			_, body, _ = sendRequest("GET", fmt.Sprintf("/lecture/v1/%d/session", lectureID), nil)
			prettyPrint(body)
			return

		default:
			fmt.Println()
			color.Red("Unexpected status %q", env.Data.Status)
			prettyPrint(body)
			os.Exit(1)
		}
	}

	color.Red("Gave up after too many polls")
	os.Exit(1)
}
