// Command authctl is a small CLI client for the auth service, mainly for
// poking a running instance during development.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	req, err := http.NewRequest(method, strings.TrimRight(c.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func printJSON(body []byte) {
	var v any
	if json.Unmarshal(body, &v) == nil {
		p, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(string(p))
		return
	}
	fmt.Println(string(body))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cl := &client{
		BaseURL: envOr("AUTHCTL_URL", "http://localhost:8080"),
		Token:   envOr("AUTHCTL_TOKEN", ""),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	root := &cobra.Command{
		Use:   "authctl",
		Short: "CLI client for the auth service",
	}
	root.PersistentFlags().StringVar(&cl.BaseURL, "url", cl.BaseURL, "service base URL (env AUTHCTL_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", cl.Token, "session token (env AUTHCTL_TOKEN)")

	loginCmd := &cobra.Command{
		Use:   "login <provider>",
		Short: "Print the provider authorization URL for a new login",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := cl.HTTP.Get(strings.TrimRight(cl.BaseURL, "/") + "/auth/login/" + args[0])
			if err != nil {
				return err
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusFound {
				return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
			}
			fmt.Println(resp.Header.Get("Location"))
			return nil
		},
	}

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the account behind --token",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/auth/me", nil)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("status=%d body=%s", status, string(body))
			}
			printJSON(body)
			return nil
		},
	}

	var text string
	summarizeCmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize --text through the AI endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if text == "" {
				return fmt.Errorf("--text is required")
			}
			payload, _ := json.Marshal(map[string]string{"text": text})
			status, body, err := cl.do("POST", "/ai/summarize", payload)
			if err != nil {
				return err
			}
			if status != http.StatusOK {
				return fmt.Errorf("status=%d body=%s", status, string(body))
			}
			printJSON(body)
			return nil
		},
	}
	summarizeCmd.Flags().StringVar(&text, "text", "", "text to summarize")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/readyz", nil)
			if err != nil {
				return err
			}
			printJSON(body)
			if status != http.StatusOK {
				return fmt.Errorf("not ready: status=%d", status)
			}
			return nil
		},
	}

	root.AddCommand(loginCmd, meCmd, summarizeCmd, healthCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
