//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("TUNEUP_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

type action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type summary struct {
	View    string `json:"view"`
	Summary struct {
		Overall        int `json:"overall"`
		CategoryScores []struct {
			ID    string `json:"id"`
			Score int    `json:"score"`
		} `json:"categoryScores"`
	} `json:"summary"`
}

func TestAssessmentJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	doPost(t, client, base+"/api/actions", action{Type: "RESET_ALL"}, nil)

	founder := fmt.Sprintf("Integration %d", time.Now().UnixNano())
	doPost(t, client, base+"/api/actions", action{Type: "SET_FOUNDER", Payload: map[string]string{"name": founder}}, nil)

	for _, id := range []string{"fin-runway", "fin-unit", "fin-forecast", "fin-kpis", "fin-fundraising"} {
		doPost(t, client, base+"/api/actions", action{Type: "SET_ANSWER", Payload: map[string]any{
			"perspective": "individual", "questionId": id, "value": 5,
		}}, nil)
		doPost(t, client, base+"/api/actions", action{Type: "SET_ANSWER", Payload: map[string]any{
			"perspective": "manager", "questionId": id, "value": 0,
		}}, nil)
	}

	var combined summary
	doGet(t, client, base+"/api/summary?view=combined", &combined)
	for _, cs := range combined.Summary.CategoryScores {
		if cs.ID == "finance" && cs.Score != 50 {
			t.Fatalf("combined finance = %d, want 50", cs.Score)
		}
	}

	var link struct {
		Token string `json:"token"`
		Sig   string `json:"sig"`
		URL   string `json:"url"`
	}
	doPost(t, client, base+"/api/share", struct{}{}, &link)
	if link.Token == "" || !strings.Contains(link.URL, "s=") {
		t.Fatalf("unexpected share link: %+v", link)
	}

	doPost(t, client, base+"/api/actions", action{Type: "RESET_ALL"}, nil)

	var opened struct {
		Opened bool `json:"opened"`
	}
	doPost(t, client, base+"/api/share/open", map[string]string{"token": link.Token, "sig": link.Sig}, &opened)
	if !opened.Opened {
		t.Fatalf("share link did not open")
	}

	csvContent := doGetText(t, client, base+"/api/export?format=ratings")
	if !strings.Contains(csvContent, "fin-runway") || !strings.Contains(csvContent, ",5,0,3") {
		t.Fatalf("export csv did not carry shared ratings; csv=%s", csvContent)
	}

	page := doGetText(t, client, base+"/print?view=combined")
	if !strings.Contains(page, founder) {
		t.Fatalf("print view missing founder %q", founder)
	}
}

func doGet(t *testing.T, client *http.Client, url string, out any) {
	t.Helper()
	if err := json.Unmarshal([]byte(doGetText(t, client, url)), out); err != nil {
		t.Fatalf("decode response from %s: %v", url, err)
	}
}

func doGetText(t *testing.T, client *http.Client, url string) string {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("http get %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(body))
	}
	return string(body)
}

func doPost(t *testing.T, client *http.Client, url string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
